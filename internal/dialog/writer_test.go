package dialog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileWriterResetCreatesDirectoryAndTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dialog.log")
	w := NewFileWriter(path)

	if err := w.Reset(); err != nil {
		t.Fatalf("Reset returned error: %v", err)
	}
	if err := w.Write(ProgressCommand(10)); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if err := w.Write(TitleCommand("Setup")); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read command file: %v", err)
	}
	if string(data) != "progress: 10\ntitle: Setup\n" {
		t.Fatalf("unexpected command file contents: %q", data)
	}

	if err := w.Reset(); err != nil {
		t.Fatalf("second Reset returned error: %v", err)
	}
	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("read command file: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("expected truncated file, got %q", data)
	}
}

func TestFileWriterWriteFailsWhenDirectoryMissing(t *testing.T) {
	w := NewFileWriter(filepath.Join(t.TempDir(), "missing", "dialog.log"))
	if err := w.Write(QuitCommand()); err == nil {
		t.Fatal("expected error when parent directory is missing")
	}
}
