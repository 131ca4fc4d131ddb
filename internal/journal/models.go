package journal

import "time"

// Session is a persisted dialog session.
type Session struct {
	ID             string
	Title          string
	Message        string
	CommandFile    string
	TotalItems     int
	CompletedItems int
	Percent        int
	State          string
	PID            int
	StartedAt      time.Time
	UpdatedAt      time.Time
	EndedAt        *time.Time
}

// Entry is one command written during a session.
type Entry struct {
	ID        int64
	SessionID string
	Line      string
	WrittenAt time.Time
}
