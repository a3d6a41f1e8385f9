package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"musicmerge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The game data directory is created empty.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Game.DataDir = filepath.Join(base, "Data")
	cfgVal.Game.PluginsFile = filepath.Join(base, "plugins.txt")
	cfgVal.History.Path = filepath.Join(base, "history", "history.db")
	cfgVal.Logging.Dir = filepath.Join(base, "logs")
	cfgVal.Logging.Level = "error"

	if err := os.MkdirAll(cfgVal.Game.DataDir, 0o755); err != nil {
		t.Fatalf("mkdir data dir: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithGame selects the catalogue game on the test config.
func WithGame(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Game.Name = name
	}
}

// WithoutImplicitMasters stops the load order from prepending the game's
// implicit master files.
func WithoutImplicitMasters() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Game.IncludeImplicit = false
	}
}

// WithoutHistory disables the run history store.
func WithoutHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithPluginsTxt writes lines to the config's plugins.txt.
func WithPluginsTxt(lines ...string) ConfigOption {
	return func(b *configBuilder) {
		var body []byte
		for _, line := range lines {
			body = append(body, line...)
			body = append(body, '\r', '\n')
		}
		if err := os.WriteFile(b.cfg.Game.PluginsFile, body, 0o644); err != nil {
			b.t.Fatalf("write plugins.txt: %v", err)
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Game.DataDir)
}
