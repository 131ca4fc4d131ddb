package preflight

import (
	"path/filepath"

	"setupdialog/internal/config"
	"setupdialog/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Dialog executable (optional; missing means headless)
	results = append(results, CheckDialogBinary(cfg.Dialog.Binary))

	// Command file directory (always checked)
	results = append(results, CheckWritableParent("Command directory", filepath.Dir(cfg.Dialog.CommandFile)))

	if cfg.Journal.Enabled {
		results = append(results, CheckWritableParent("Journal directory", filepath.Dir(cfg.Journal.Path)))
	}

	if cfg.Logging.Dir != "" {
		results = append(results, CheckWritableParent("Log directory", cfg.Logging.Dir))
	}

	return results
}

// CheckDialogBinary reports whether the progress dialog can be launched. A
// missing binary passes with a headless note since the notifier degrades to
// a no-op instead of failing.
func CheckDialogBinary(binary string) Result {
	status := deps.CheckBinary(deps.DialogRequirement(binary))
	if status.Available {
		return Result{Name: status.Name, Passed: true, Detail: status.Path}
	}
	return Result{Name: status.Name, Detail: status.Detail + " (headless mode)"}
}
