package main

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"musicmerge/internal/config"
	"musicmerge/internal/history"
	"musicmerge/internal/logging"
	"musicmerge/internal/plugin"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag)); level != "" {
				cfg.Logging.Level = level
				if err := cfg.Validate(); err != nil {
					c.configErr = fmt.Errorf("--log-level: %w", err)
					return
				}
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// startSession opens the run logger and prunes expired run logs.
func (c *commandContext) startSession(runID string) (*config.Config, *logging.Session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	session, err := logging.NewFromConfig(cfg, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("init logging: %w", err)
	}
	logging.CleanupOldLogs(session.Logger, cfg.Logging.Dir, cfg.Logging.RetentionDays, session.LogPath)
	return cfg, session, nil
}

// withHistory opens the run history store. fn receives nil when history is
// disabled.
func (c *commandContext) withHistory(fn func(*history.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg)
	if errors.Is(err, history.ErrDisabled) {
		return fn(nil)
	}
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

// pluginOptions returns the codec options selected by the config.
func (c *commandContext) pluginOptions() ([]plugin.Option, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	enc, err := plugin.LookupTextEncoding(cfg.Codec.TextEncoding)
	if err != nil {
		return nil, fmt.Errorf("codec.text_encoding: %w", err)
	}
	return []plugin.Option{plugin.WithTextEncoding(enc)}, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
