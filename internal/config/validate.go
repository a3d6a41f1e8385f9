package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateCodec(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateOutput() error {
	name := c.Output.FileName
	if name == "" {
		return errors.New("output.file_name must be set")
	}
	if filepath.Base(name) != name {
		return fmt.Errorf("output.file_name %q must be a file name, not a path", name)
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".esp", ".esm", ".esl":
		return nil
	default:
		return fmt.Errorf("output.file_name %q must end in .esp, .esm or .esl", name)
	}
}

func (c *Config) validateCodec() error {
	switch c.Codec.TextEncoding {
	case "utf-8", "windows-1252":
		return nil
	default:
		return fmt.Errorf("codec.text_encoding %q is not supported (use utf-8 or windows-1252)", c.Codec.TextEncoding)
	}
}

func (c *Config) validateHistory() error {
	if c.History.Enabled && strings.TrimSpace(c.History.Path) == "" {
		return errors.New("history.path must be set when history.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not supported (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}
	return nil
}
