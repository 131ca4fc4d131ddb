// Package journal persists dialog session history in SQLite.
//
// Every launched dialog becomes a session row; every command written to the
// command file is appended to the commands table together with the session's
// latest counters. The CLI reads the journal to show what the last setup run
// reported, which the one-way command file cannot tell it.
package journal
