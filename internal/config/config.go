package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Game selects the game whose load order is merged and where its files live.
type Game struct {
	Name            string `toml:"name"`
	DataDir         string `toml:"data_dir"`
	PluginsFile     string `toml:"plugins_file"`
	IncludeImplicit bool   `toml:"include_implicit"`
}

// Output describes the merged plugin written by a run.
type Output struct {
	FileName    string `toml:"file_name"`
	Dir         string `toml:"dir"` // Default: the game data directory
	Author      string `toml:"author"`
	Description string `toml:"description"`
}

// Codec contains plugin decoding options.
type Codec struct {
	TextEncoding string `toml:"text_encoding"`
}

// Merge contains record aggregation options.
type Merge struct {
	// FoldEditorIDCase makes editor-id matching case-insensitive, so
	// "MUSDungeon" and "musdungeon" merge into one record.
	FoldEditorIDCase bool `toml:"fold_editor_id_case"`
}

// History contains configuration for the merge run history store.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	Dir           string `toml:"dir"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for musicmerge.
//
// Configuration sections by subsystem:
//   - Game: which game, its data directory and plugins.txt
//   - Output: merged plugin name, location and header text
//   - Codec: zstring text encoding
//   - Merge: editor-id matching rules
//   - History: SQLite run history
//   - Logging: log format, level, directory and retention
type Config struct {
	Game    Game    `toml:"game"`
	Output  Output  `toml:"output"`
	Codec   Codec   `toml:"codec"`
	Merge   Merge   `toml:"merge"`
	History History `toml:"history"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: %s", strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// OutputPath returns where the merged plugin is written. dataDir is the
// resolved game data directory, used when output.dir is unset.
func (c *Config) OutputPath(dataDir string) string {
	dir := c.Output.Dir
	if dir == "" {
		dir = dataDir
	}
	return filepath.Join(dir, c.Output.FileName)
}

// EnsureDirectories creates the directories a merge run writes to.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Logging.Dir}
	if c.History.Enabled {
		dirs = append(dirs, filepath.Dir(c.History.Path))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
