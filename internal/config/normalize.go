package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeGame(); err != nil {
		return err
	}
	if err := c.normalizeOutput(); err != nil {
		return err
	}
	c.normalizeCodec()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeGame() error {
	c.Game.Name = strings.TrimSpace(c.Game.Name)
	if c.Game.Name == "" {
		c.Game.Name = defaultGameName
	}
	if strings.TrimSpace(c.Game.DataDir) == "" {
		if value, ok := os.LookupEnv(DataDirEnv); ok {
			c.Game.DataDir = strings.TrimSpace(value)
		}
	}
	var err error
	if c.Game.DataDir, err = expandPath(strings.TrimSpace(c.Game.DataDir)); err != nil {
		return fmt.Errorf("game.data_dir: %w", err)
	}
	if c.Game.PluginsFile, err = expandPath(strings.TrimSpace(c.Game.PluginsFile)); err != nil {
		return fmt.Errorf("game.plugins_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeOutput() error {
	c.Output.FileName = strings.TrimSpace(c.Output.FileName)
	if c.Output.FileName == "" {
		c.Output.FileName = defaultOutputFileName
	}
	c.Output.Author = strings.TrimSpace(c.Output.Author)
	if c.Output.Author == "" {
		c.Output.Author = defaultOutputAuthor
	}
	c.Output.Description = strings.TrimSpace(c.Output.Description)
	var err error
	if c.Output.Dir, err = expandPath(strings.TrimSpace(c.Output.Dir)); err != nil {
		return fmt.Errorf("output.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCodec() {
	c.Codec.TextEncoding = strings.ToLower(strings.TrimSpace(c.Codec.TextEncoding))
	switch c.Codec.TextEncoding {
	case "", "utf8":
		c.Codec.TextEncoding = defaultTextEncoding
	case "cp1252":
		c.Codec.TextEncoding = "windows-1252"
	}
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	var err error
	if c.History.Path, err = expandPath(strings.TrimSpace(c.History.Path)); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}
