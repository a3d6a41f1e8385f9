package game

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"musicmerge/internal/config"
)

// LoadOrder is a game's resolved plugin list. It satisfies merge.LoadOrder.
type LoadOrder struct {
	Game            Game
	DataDir         string
	PluginsFile     string
	IncludeImplicit bool
}

// FromConfig builds the load order described by cfg, resolving the data
// directory and plugins.txt location when they are not configured.
func FromConfig(cfg *config.Config) (*LoadOrder, error) {
	if cfg == nil {
		return nil, fmt.Errorf("load order: nil config")
	}
	g, err := Parse(cfg.Game.Name)
	if err != nil {
		return nil, fmt.Errorf("game.name: %w", err)
	}
	dataDir, err := ResolveDataDir(cfg.Game, g)
	if err != nil {
		return nil, err
	}
	pluginsFile := strings.TrimSpace(cfg.Game.PluginsFile)
	if pluginsFile == "" {
		if pluginsFile, err = DefaultPluginsFile(g); err != nil {
			return nil, err
		}
	}
	return &LoadOrder{
		Game:            g,
		DataDir:         dataDir,
		PluginsFile:     pluginsFile,
		IncludeImplicit: cfg.Game.IncludeImplicit,
	}, nil
}

// Entries returns plugin file names in load order: the implicit modules
// when enabled, then plugins.txt. Names repeated in any letter case keep
// their first position.
func (o *LoadOrder) Entries() ([]string, error) {
	file, err := os.Open(o.PluginsFile)
	if err != nil {
		return nil, fmt.Errorf("open plugins.txt: %w", err)
	}
	defer file.Close()

	listed, err := ParsePluginsTxt(file, o.Game.UsesAsterisk())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", o.PluginsFile, err)
	}

	var names []string
	if o.IncludeImplicit {
		names = o.Game.ImplicitModules()
	}
	return dedupeNames(append(names, listed...)), nil
}

// Paths joins every entry onto the data directory.
func (o *LoadOrder) Paths() ([]string, error) {
	names, err := o.Entries()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, filepath.Join(o.DataDir, name))
	}
	return paths, nil
}

// ParsePluginsTxt returns the enabled plugin names listed in r. Blank lines
// and '#' comments are ignored. With asterisk set only lines starting with
// '*' are enabled; otherwise every listed line is.
func ParsePluginsTxt(r io.Reader, asterisk bool) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	first := true
	for scanner.Scan() {
		line := scanner.Bytes()
		if first {
			line = bytes.TrimPrefix(line, []byte("\xef\xbb\xbf"))
			first = false
		}
		entry := strings.TrimSpace(string(line))
		if entry == "" || strings.HasPrefix(entry, "#") {
			continue
		}
		if asterisk {
			if !strings.HasPrefix(entry, "*") {
				continue
			}
			entry = strings.TrimSpace(entry[1:])
			if entry == "" {
				continue
			}
		}
		names = append(names, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

func dedupeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := names[:0]
	for _, name := range names {
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}
