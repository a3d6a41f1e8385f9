package history

import (
	"database/sql"
	"strings"
	"time"
)

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run        Run
		startedRaw string
		finishRaw  string
		status     string
		output     sql.NullString
		errMsg     sql.NullString
		logPath    sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&startedRaw,
		&finishRaw,
		&run.Game,
		&output,
		&status,
		&errMsg,
		&run.Records,
		&run.Masters,
		&logPath,
	); err != nil {
		return nil, err
	}
	run.StartedAt = parseTime(startedRaw)
	run.FinishedAt = parseTime(finishRaw)
	run.Status = Status(status)
	run.OutputPath = output.String
	run.Error = errMsg.String
	run.LogPath = logPath.String
	return &run, nil
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) sql.NullString {
	if strings.TrimSpace(value) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

// stripWildcards drops LIKE metacharacters, which never occur in run ids.
func stripWildcards(s string) string {
	return strings.NewReplacer("%", "", "_", "").Replace(s)
}
