package dialog

import (
	"fmt"
	"os"
	"path/filepath"
)

// CommandWriter delivers commands to the dialog.
type CommandWriter interface {
	// Reset clears any commands from a previous session.
	Reset() error
	Write(cmd Command) error
}

// FileWriter appends commands to the shared command file, one per line.
type FileWriter struct {
	path string
}

// NewFileWriter returns a writer for the command file at path.
func NewFileWriter(path string) *FileWriter {
	return &FileWriter{path: path}
}

// Path returns the command file location.
func (w *FileWriter) Path() string { return w.path }

// Reset creates the parent directory and truncates the command file.
func (w *FileWriter) Reset() error {
	if dir := filepath.Dir(w.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create command directory: %w", err)
		}
	}
	if err := os.WriteFile(w.path, nil, 0o644); err != nil {
		return fmt.Errorf("truncate command file: %w", err)
	}
	return nil
}

// Write appends cmd followed by a newline.
func (w *FileWriter) Write(cmd Command) error {
	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open command file: %w", err)
	}
	if _, err := file.WriteString(string(cmd) + "\n"); err != nil {
		_ = file.Close()
		return fmt.Errorf("append command: %w", err)
	}
	return file.Close()
}
