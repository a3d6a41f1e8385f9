package logging

import "time"

const consoleTimestampLayout = "15:04:05"

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.In(time.Local).Format(consoleTimestampLayout)
}
