package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"musicmerge/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level       string
	Format      string
	OutputPaths []string
	Development bool
	// Color forces coloured console level labels on or off. When nil the
	// console handler colours only terminal writers.
	Color *bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))

	handler, err := newHandler(opts, levelVar)
	if err != nil {
		return nil, err
	}
	return slog.New(handler), nil
}

func newHandler(opts Options, levelVar *slog.LevelVar) (slog.Handler, error) {
	writer, err := openWriters(defaultSlice(opts.OutputPaths, []string{"stderr"}))
	if err != nil {
		return nil, err
	}
	addSource := opts.Development || levelVar.Level() <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	switch format {
	case "json":
		return newJSONHandler(writer, levelVar, addSource), nil
	case "console", "":
		color := shouldColorize(writer)
		if opts.Color != nil {
			color = *opts.Color
		}
		return newConsoleHandler(writer, levelVar, addSource, color), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// Session is a logger for one CLI invocation plus the per-run file it tees to.
type Session struct {
	Logger  *slog.Logger
	LogPath string

	file *os.File
}

// Close releases the per-run log file.
func (s *Session) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// NewFromConfig creates the logger for one run. Console output follows the
// configured format on stderr; when a log directory is configured, a JSON
// copy of every record goes to a per-run file tagged with runID.
func NewFromConfig(cfg *config.Config, runID string) (*Session, error) {
	if cfg == nil {
		logger, err := New(Options{Level: "info", Format: "console"})
		if err != nil {
			return nil, err
		}
		return &Session{Logger: logger}, nil
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(cfg.Logging.Level))
	console, err := newHandler(Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format}, levelVar)
	if err != nil {
		return nil, err
	}

	session := &Session{}
	handlers := []slog.Handler{console}
	if dir := strings.TrimSpace(cfg.Logging.Dir); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		session.LogPath = filepath.Join(dir, RunLogName(time.Now()))
		file, err := os.OpenFile(session.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", session.LogPath, err)
		}
		session.file = file
		fileLevel := new(slog.LevelVar)
		fileLevel.Set(slog.LevelDebug)
		handlers = append(handlers, newJSONHandler(file, fileLevel, false))
	}

	handler := TeeHandler(handlers...)
	if runID != "" {
		handler = newRunIDHandler(handler, runID)
	}
	session.Logger = slog.New(handler)
	return session, nil
}

// RunLogName returns the file name used for a run's JSON log.
func RunLogName(ts time.Time) string {
	return "musicmerge-" + ts.UTC().Format("20060102T150405Z") + ".log"
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultSlice(value []string, fallback []string) []string {
	if len(value) == 0 {
		return append([]string(nil), fallback...)
	}
	return append([]string(nil), value...)
}

func openWriters(paths []string) (io.Writer, error) {
	seen := map[string]struct{}{}
	var writers []io.Writer
	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}

		switch trimmed {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if dir := filepath.Dir(trimmed); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, fmt.Errorf("ensure log directory: %w", err)
				}
			}
			file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", trimmed, err)
			}
			writers = append(writers, file)
		}
	}

	switch len(writers) {
	case 0:
		return os.Stderr, nil
	case 1:
		return writers[0], nil
	default:
		return io.MultiWriter(writers...), nil
	}
}
