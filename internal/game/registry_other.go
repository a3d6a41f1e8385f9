//go:build !windows

package game

import (
	"errors"

	"musicmerge/internal/config"
)

func lookupInstallPath(Game) (string, error) {
	return "", errors.New("registry lookup requires Windows; set game.data_dir or " + config.DataDirEnv)
}
