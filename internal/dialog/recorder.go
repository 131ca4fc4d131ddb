package dialog

import (
	"context"
	"time"
)

// SessionRecord is a snapshot of a dialog session for the journal.
type SessionRecord struct {
	ID             string
	Title          string
	Message        string
	CommandFile    string
	TotalItems     int
	CompletedItems int
	Percent        int
	PID            int
	State          State
	StartedAt      time.Time
	EndedAt        time.Time
}

// Recorder persists session history. Errors are logged by the notifier and
// never interrupt notifications.
type Recorder interface {
	SessionStarted(ctx context.Context, rec SessionRecord) error
	CommandWritten(ctx context.Context, rec SessionRecord, cmd Command) error
	SessionEnded(ctx context.Context, rec SessionRecord) error
}

type noopRecorder struct{}

func (noopRecorder) SessionStarted(context.Context, SessionRecord) error          { return nil }
func (noopRecorder) CommandWritten(context.Context, SessionRecord, Command) error { return nil }
func (noopRecorder) SessionEnded(context.Context, SessionRecord) error            { return nil }
