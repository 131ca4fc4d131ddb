// Package logging assembles structured slog loggers for setupdialog.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context helpers so every line emitted during a dialog
// session carries its session ID. The package also provides a no-op logger for
// tests and wiring code that cannot fail.
package logging
