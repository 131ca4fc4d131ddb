package dialog

// ItemStatus is the state shown next to a list item in the dialog.
type ItemStatus int

const (
	StatusNone ItemStatus = iota
	StatusPending
	StatusWaiting
	StatusSuccess
	StatusFail
	StatusError
	StatusProgress
)

// String returns the lowercase name the dialog expects on the wire.
func (s ItemStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusWaiting:
		return "waiting"
	case StatusSuccess:
		return "success"
	case StatusFail:
		return "fail"
	case StatusError:
		return "error"
	case StatusProgress:
		return "progress"
	default:
		return "none"
	}
}

// completes reports whether an item reaching this status counts toward progress.
func (s ItemStatus) completes() bool {
	return s == StatusSuccess || s == StatusFail
}

// State is the lifecycle phase of a Notifier.
type State int

const (
	StateUninitialized State = iota
	StateHeadless
	StateRunning
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateHeadless:
		return "headless"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return "uninitialized"
	}
}
