package dialog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type fakeProcess struct {
	pid     int
	killErr error

	mu     sync.Mutex
	kills  int
	done   chan struct{}
	closed bool
}

func newFakeProcess(pid int) *fakeProcess {
	return &fakeProcess{pid: pid, done: make(chan struct{})}
}

func (p *fakeProcess) Pid() int { return p.pid }

func (p *fakeProcess) Done() <-chan struct{} { return p.done }

func (p *fakeProcess) Kill() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kills++
	if p.killErr != nil {
		return p.killErr
	}
	if p.closed {
		return os.ErrProcessDone
	}
	p.closed = true
	close(p.done)
	return nil
}

func (p *fakeProcess) killCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.kills
}

type launchCall struct {
	binary string
	args   []string
}

type fakeLauncher struct {
	err   error
	calls []launchCall
	procs []*fakeProcess
}

func (l *fakeLauncher) Launch(binary string, args []string) (Process, error) {
	l.calls = append(l.calls, launchCall{binary: binary, args: append([]string(nil), args...)})
	if l.err != nil {
		return nil, l.err
	}
	proc := newFakeProcess(1000 + len(l.calls))
	l.procs = append(l.procs, proc)
	return proc, nil
}

type recordingWriter struct {
	resets   int
	commands []Command
	writeErr error
}

func (w *recordingWriter) Reset() error {
	w.resets++
	w.commands = nil
	return nil
}

func (w *recordingWriter) Write(cmd Command) error {
	if w.writeErr != nil {
		return w.writeErr
	}
	w.commands = append(w.commands, cmd)
	return nil
}

func (w *recordingWriter) lines() []string {
	out := make([]string, len(w.commands))
	for i, cmd := range w.commands {
		out[i] = string(cmd)
	}
	return out
}

type recordedEvent struct {
	kind string
	rec  SessionRecord
	cmd  Command
}

type fakeRecorder struct {
	err    error
	events []recordedEvent
}

func (r *fakeRecorder) SessionStarted(_ context.Context, rec SessionRecord) error {
	r.events = append(r.events, recordedEvent{kind: "start", rec: rec})
	return r.err
}

func (r *fakeRecorder) CommandWritten(_ context.Context, rec SessionRecord, cmd Command) error {
	r.events = append(r.events, recordedEvent{kind: "command", rec: rec, cmd: cmd})
	return r.err
}

func (r *fakeRecorder) SessionEnded(_ context.Context, rec SessionRecord) error {
	r.events = append(r.events, recordedEvent{kind: "end", rec: rec})
	return r.err
}

var errBoom = errors.New("boom")

// stubBinary writes an executable placeholder so the availability check passes.
func stubBinary(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dialog")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func testOptions(t *testing.T, binary string) Options {
	t.Helper()
	return Options{
		Binary:      binary,
		CommandFile: filepath.Join(t.TempDir(), "cmd", "dialog.log"),
		CloseGrace:  time.Millisecond,
	}
}
