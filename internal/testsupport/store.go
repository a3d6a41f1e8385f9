package testsupport

import (
	"context"
	"testing"
	"time"

	"musicmerge/internal/config"
	"musicmerge/internal/history"
)

// MustOpenHistory opens a history.Store for tests and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// RecordRun stores a succeeded run started at startedAt and returns it.
func RecordRun(t testing.TB, store *history.Store, startedAt time.Time, plugins ...history.Plugin) *history.Run {
	t.Helper()

	run := &history.Run{
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(250 * time.Millisecond),
		Game:       "Skyrim Special Edition",
		OutputPath: "/data/music_merge_patch.esp",
		Status:     history.StatusSucceeded,
		Plugins:    plugins,
	}
	if err := store.Record(context.Background(), run); err != nil {
		t.Fatalf("store.Record: %v", err)
	}
	return run
}
