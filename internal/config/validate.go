package config

import (
	"errors"
	"fmt"
)

// ErrInvalid marks configuration validation failures.
var ErrInvalid = errors.New("invalid configuration")

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDialog(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDialog() error {
	if c.Dialog.CommandFile == "" {
		return fmt.Errorf("%w: dialog.command_file must be set", ErrInvalid)
	}
	if c.Dialog.ButtonText == "" {
		return fmt.Errorf("%w: dialog.button_text must not be empty", ErrInvalid)
	}
	if c.Dialog.CompleteButtonText == "" {
		return fmt.Errorf("%w: dialog.complete_button_text must not be empty", ErrInvalid)
	}
	if c.Dialog.CloseGraceMillis < 0 {
		return fmt.Errorf("%w: dialog.close_grace_ms must be >= 0 (0 uses the 500ms default)", ErrInvalid)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json", "auto":
	default:
		return fmt.Errorf("%w: logging.format %q (want console, json, or auto)", ErrInvalid, c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: logging.level %q (want debug, info, warn, or error)", ErrInvalid, c.Logging.Level)
	}
	return nil
}
