// Package preflight provides readiness checks for the filesystem paths and
// executables setupdialog depends on.
//
// The CLI "setupdialog status" command renders RunAll results. The checks
// never block a notification: a failing command directory only explains why
// the notifier logged write errors or stayed headless.
package preflight
