// Package config loads, normalizes, and validates setupdialog configuration.
//
// It supplies platform defaults for the dialog executable and the shared
// command file, expands user paths (including tilde shortcuts), and reads TOML
// files. The Config type centralizes every knob the notifier and CLI need so
// callers receive sanitized paths and clear validation errors from one place.
package config
