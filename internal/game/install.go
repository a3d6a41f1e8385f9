package game

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"musicmerge/internal/config"
)

var (
	// ErrInstallNotFound reports that no data directory could be located.
	ErrInstallNotFound = errors.New("game install not found")
	// ErrNoPluginsFile reports that the game or platform has no known
	// plugins.txt location.
	ErrNoPluginsFile = errors.New("plugins.txt location unknown")
)

// installedPathValue is the registry value holding the install directory.
const installedPathValue = "installed path"

// ResolveDataDir returns the game's Data directory, preferring the configured
// directory, then the MUSICMERGE_DATA_DIR environment variable, then the
// install path recorded in the Windows registry.
func ResolveDataDir(cfg config.Game, g Game) (string, error) {
	if dir := strings.TrimSpace(cfg.DataDir); dir != "" {
		return config.ExpandPath(dir)
	}
	if dir := strings.TrimSpace(os.Getenv(config.DataDirEnv)); dir != "" {
		return config.ExpandPath(dir)
	}
	install, err := lookupInstallPath(g)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInstallNotFound, g, err)
	}
	return filepath.Join(install, "Data"), nil
}

// DefaultPluginsFile returns %LOCALAPPDATA%\<game>\plugins.txt.
func DefaultPluginsFile(g Game) (string, error) {
	if !g.HasPluginsTxt() {
		return "", fmt.Errorf("%w: %s keeps its load order elsewhere", ErrNoPluginsFile, g)
	}
	base := strings.TrimSpace(os.Getenv("LOCALAPPDATA"))
	if base == "" {
		return "", fmt.Errorf("%w: LOCALAPPDATA is not set; configure game.plugins_file", ErrNoPluginsFile)
	}
	return filepath.Join(base, catalogue[g].localDir, "plugins.txt"), nil
}
