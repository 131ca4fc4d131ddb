package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeDialog(); err != nil {
		return err
	}
	if err := c.normalizeJournal(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeDialog() error {
	var err error
	c.Dialog.Binary = strings.TrimSpace(c.Dialog.Binary)
	if c.Dialog.Binary == "" {
		c.Dialog.Binary = DefaultDialogBinary()
	}
	if strings.ContainsAny(c.Dialog.Binary, `/\~`) {
		if c.Dialog.Binary, err = expandPath(c.Dialog.Binary); err != nil {
			return fmt.Errorf("dialog.binary: %w", err)
		}
	}
	c.Dialog.CommandFile = strings.TrimSpace(c.Dialog.CommandFile)
	if c.Dialog.CommandFile == "" {
		c.Dialog.CommandFile = DefaultCommandFile()
	}
	if c.Dialog.CommandFile, err = expandPath(c.Dialog.CommandFile); err != nil {
		return fmt.Errorf("dialog.command_file: %w", err)
	}
	c.Dialog.Icon = strings.TrimSpace(c.Dialog.Icon)
	c.Dialog.ButtonText = strings.TrimSpace(c.Dialog.ButtonText)
	c.Dialog.CompleteButtonText = strings.TrimSpace(c.Dialog.CompleteButtonText)
	c.Dialog.DefaultProgressText = strings.TrimSpace(c.Dialog.DefaultProgressText)
	return nil
}

func (c *Config) normalizeJournal() error {
	c.Journal.Path = strings.TrimSpace(c.Journal.Path)
	if c.Journal.Path == "" {
		c.Journal.Path = defaultJournalPath
	}
	var err error
	if c.Journal.Path, err = expandPath(c.Journal.Path); err != nil {
		return fmt.Errorf("journal.path: %w", err)
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
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}
