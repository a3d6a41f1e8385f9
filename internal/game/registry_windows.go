//go:build windows

package game

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

func lookupInstallPath(g Game) (string, error) {
	keyPath := g.RegistryKey()
	if keyPath == "" {
		return "", fmt.Errorf("no registry key for %s", g)
	}
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, keyPath, registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("open HKLM\\%s: %w", keyPath, err)
	}
	defer key.Close()

	path, _, err := key.GetStringValue(installedPathValue)
	if err != nil {
		return "", fmt.Errorf("read %q: %w", installedPathValue, err)
	}
	if path == "" {
		return "", fmt.Errorf("%q is empty", installedPathValue)
	}
	return path, nil
}
