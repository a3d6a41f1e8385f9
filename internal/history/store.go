package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"musicmerge/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes.
const schemaVersion = 1

// timeLayout is fixed width so stored timestamps sort chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var (
	// ErrSchemaMismatch indicates the database was written by a different schema version.
	ErrSchemaMismatch = errors.New("schema version mismatch")
	// ErrDisabled is returned by Open when history is turned off in the config.
	ErrDisabled = errors.New("run history is disabled")
)

// Store persists merge runs backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at cfg.History.Path.
func Open(cfg *config.Config) (*Store, error) {
	if !cfg.History.Enabled {
		return nil, ErrDisabled
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.History.Path
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Connection pragmas only hold for the connection they ran on.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to start over)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Record inserts run and its plugin entries. A run without an id is
// assigned one.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	if run.ID == "" {
		run.ID = NewRunID()
	}
	if run.Status == "" {
		run.Status = StatusSucceeded
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = run.StartedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (
            id, started_at, finished_at, game, output_path, status,
            error_message, records, masters, log_path
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
		run.Game,
		nullableString(run.OutputPath),
		run.Status,
		nullableString(run.Error),
		run.Records,
		run.Masters,
		nullableString(run.LogPath),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, p := range run.Plugins {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_plugins (run_id, position, name, outcome, records, new_records, added_tracks)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, p.Name, p.Outcome, p.Records, p.NewRecords, p.AddedTracks,
		); err != nil {
			return fmt.Errorf("insert run plugin %s: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

const runColumns = "id, started_at, finished_at, game, output_path, status, error_message, records, masters, log_path"

// List returns up to limit runs, most recent first. A limit of zero or less
// returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Get fetches a run with its plugin entries. An unambiguous id prefix is
// accepted. It returns nil when no run matches.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("run id is empty")
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ORDER BY id = ? DESC LIMIT 2`,
		id, stripWildcards(id)+"%", id,
	)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		matches = append(matches, run)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	switch {
	case len(matches) == 0:
		return nil, nil
	case len(matches) > 1 && matches[0].ID != id:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
	run := matches[0]

	plugins, err := s.plugins(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	run.Plugins = plugins
	return run, nil
}

func (s *Store) plugins(ctx context.Context, runID string) ([]Plugin, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, outcome, records, new_records, added_tracks
         FROM run_plugins WHERE run_id = ? ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list run plugins: %w", err)
	}
	defer rows.Close()

	var out []Plugin
	for rows.Next() {
		var p Plugin
		if err := rows.Scan(&p.Name, &p.Outcome, &p.Records, &p.NewRecords, &p.AddedTracks); err != nil {
			return nil, fmt.Errorf("scan run plugin: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run plugins: %w", err)
	}
	return out, nil
}

// Prune deletes runs beyond the keep most recent and reports how many were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (
            SELECT id FROM runs ORDER BY started_at DESC, id LIMIT ?
        )`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
