// Package logging assembles the structured slog loggers used across
// musicmerge.
//
// It owns the console and JSON handlers, level parsing, output plumbing and
// per-run log files, and exposes context helpers that tag log lines with the
// merge run id and the plugin being processed. A no-op logger is provided for
// tests and for components constructed without one.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same keys and routing.
package logging
