package testsupport

import (
	"path/filepath"
	"testing"

	"setupdialog/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp paths per test. The
// dialog binary does not exist unless WithStubbedDialog is applied, so the
// default config yields a headless notifier.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Dialog.Binary = filepath.Join(base, "bin", "dialog")
	cfgVal.Dialog.CommandFile = filepath.Join(base, "run", "dialog.log")
	cfgVal.Dialog.CloseGraceMillis = 1
	cfgVal.Journal.Enabled = false
	cfgVal.Journal.Path = filepath.Join(base, "state", "journal.db")
	cfgVal.Logging.Format = "json"
	cfgVal.Logging.Level = "error"
	cfgVal.Logging.Dir = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithStubbedDialog writes an executable that exits immediately at the
// configured dialog binary path.
func WithStubbedDialog() ConfigOption {
	return func(b *configBuilder) {
		WriteStubBinary(b.t, b.cfg.Dialog.Binary)
	}
}

// WithJournal toggles the session journal.
func WithJournal(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Journal.Enabled = enabled
	}
}
