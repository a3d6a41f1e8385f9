package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RunLogPattern matches the per-run log files written by NewFromConfig.
const RunLogPattern = "musicmerge-*.log"

// CleanupOldLogs removes run logs in dir older than retentionDays, keeping
// the paths listed in keep. A retentionDays value of 0 disables pruning.
// It returns the number of files removed.
func CleanupOldLogs(logger *slog.Logger, dir string, retentionDays int, keep ...string) int {
	dir = strings.TrimSpace(dir)
	if retentionDays <= 0 || dir == "" {
		return 0
	}
	if logger == nil {
		logger = NewNop()
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	exclusions := make(map[string]struct{}, len(keep))
	for _, path := range keep {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			if abs, err := filepath.Abs(trimmed); err == nil {
				exclusions[abs] = struct{}{}
			}
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if matched, err := filepath.Match(RunLogPattern, name); err != nil || !matched {
			continue
		}
		fullPath := filepath.Join(dir, name)
		if abs, err := filepath.Abs(fullPath); err == nil {
			fullPath = abs
		}
		if _, skip := exclusions[fullPath]; skip {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(fullPath); err != nil {
			WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
				String("path", fullPath),
				Error(err),
				String(FieldImpact, "old log file remains on disk"),
			)
			continue
		}
		removed++
		logger.Debug("log pruned", String("path", fullPath), String(FieldEventType, "log_pruned"))
	}
	return removed
}
