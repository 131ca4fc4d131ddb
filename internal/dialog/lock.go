package dialog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

var errCommandFileBusy = errors.New("command file is in use by another notifier")

// commandLock keeps two notifiers from driving the same command file.
type commandLock struct {
	lock *flock.Flock
}

func newCommandLock(commandFile string) *commandLock {
	return &commandLock{lock: flock.New(commandFile + ".lock")}
}

func (l *commandLock) acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.lock.Path()), 0o755); err != nil {
		return fmt.Errorf("create command directory: %w", err)
	}
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock command file: %w", err)
	}
	if !ok {
		return errCommandFileBusy
	}
	return nil
}

func (l *commandLock) release() error {
	if !l.lock.Locked() {
		return nil
	}
	return l.lock.Unlock()
}
