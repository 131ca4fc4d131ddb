// Package dialog drives an external progress-dialog executable.
//
// A Notifier launches the dialog with command-line flags and then talks to it
// one way, by appending text commands to a shared command file the dialog
// polls. It tracks how many list items have finished so it can report an
// overall percentage.
//
// Notifications are best effort. When the executable is missing the Notifier
// is headless and every call is a no-op; launch, file, and termination
// failures are logged and never returned to the caller, so a broken dialog
// cannot stop the work it reports on.
package dialog
