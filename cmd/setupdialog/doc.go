// Package main hosts the setupdialog CLI entrypoint and command graph.
//
// The Cobra-based command tree inspects the dialog environment, reads the
// session journal, drives demo sessions through the notifier, and scaffolds
// configuration. Notification logic lives in internal/dialog; commands here
// only resolve configuration and wire the notifier to its journal and logger.
package main
