package dialog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func newTestNotifier(t *testing.T) (*Notifier, *fakeLauncher, *recordingWriter) {
	t.Helper()
	launcher := &fakeLauncher{}
	writer := &recordingWriter{}
	n := New(testOptions(t, stubBinary(t)), WithLauncher(launcher), WithWriter(writer))
	if !n.Available() {
		t.Fatal("expected stub binary to make the notifier available")
	}
	return n, launcher, writer
}

func TestHeadlessNotifierHasNoSideEffects(t *testing.T) {
	launcher := &fakeLauncher{}
	recorder := &fakeRecorder{}
	opts := testOptions(t, filepath.Join(t.TempDir(), "missing-dialog"))
	n := New(opts, WithLauncher(launcher), WithRecorder(recorder))

	if n.Available() {
		t.Fatal("expected notifier to be unavailable")
	}
	if n.State() != StateHeadless {
		t.Fatalf("expected headless state, got %s", n.State())
	}

	n.Initialize(context.Background(), Session{Title: "Setup", Message: "Installing", TotalItems: 2})
	n.AddItem("Foo", StatusPending, "")
	n.UpdateItem("Foo", StatusSuccess, "Installed")
	n.UpdateProgress(50)
	n.UpdateProgressText("halfway")
	n.UpdateTitle("title")
	n.UpdateMessage("message")
	n.NotifyPhaseStarted("installing")
	n.Complete("Done")
	n.Close()
	n.Terminate()

	if len(launcher.calls) != 0 {
		t.Fatalf("expected no process launches, got %d", len(launcher.calls))
	}
	if _, err := os.Stat(opts.CommandFile); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected command file to be absent, stat err=%v", err)
	}
	if _, err := os.Stat(filepath.Dir(opts.CommandFile)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected command directory to be absent, stat err=%v", err)
	}
	if len(recorder.events) != 0 {
		t.Fatalf("expected no journal events, got %d", len(recorder.events))
	}
	if n.State() != StateHeadless {
		t.Fatalf("expected notifier to stay headless, got %s", n.State())
	}
}

func TestInitializeLaunchesDialogWithFlags(t *testing.T) {
	n, launcher, writer := newTestNotifier(t)

	n.Initialize(context.Background(), Session{
		Title:      "Welcome",
		Message:    "Setting up your device",
		TotalItems: 3,
		Icon:       "/tmp/logo.png",
		Fullscreen: true,
		Kiosk:      true,
	})

	if len(launcher.calls) != 1 {
		t.Fatalf("expected one launch, got %d", len(launcher.calls))
	}
	want := []string{
		"--title", "Welcome",
		"--message", "Setting up your device",
		"--progressbar",
		"--progress", "0",
		"--progresstext", "Preparing...",
		"--commandfile", n.CommandFile(),
		"--button1text", "Please Wait",
		"--icon", "/tmp/logo.png",
		"--fullscreen",
		"--kiosk",
	}
	if !reflect.DeepEqual(launcher.calls[0].args, want) {
		t.Fatalf("unexpected args:\n got %q\nwant %q", launcher.calls[0].args, want)
	}
	if writer.resets != 1 {
		t.Fatalf("expected command file reset once, got %d", writer.resets)
	}
	if n.State() != StateRunning {
		t.Fatalf("expected running state, got %s", n.State())
	}
	if n.SessionID() == "" {
		t.Fatal("expected session id")
	}
	if _, total, _ := n.Progress(); total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
}

func TestInitializeLogsLaunchDetails(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	launcher := &fakeLauncher{}
	n := New(testOptions(t, stubBinary(t)), WithLauncher(launcher), WithWriter(&recordingWriter{}), WithLogger(logger))

	n.Initialize(context.Background(), Session{Title: "Kiosk", Kiosk: true})

	out := buf.String()
	for _, want := range []string{`"msg":"progress dialog launched"`, `"kiosk":true`, `"pid":1001`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in log output %q", want, out)
		}
	}
}

func TestInitializeOmitsOptionalFlags(t *testing.T) {
	n, launcher, _ := newTestNotifier(t)
	n.Initialize(context.Background(), Session{Title: "T", Message: "M"})

	args := strings.Join(launcher.calls[0].args, " ")
	for _, flag := range []string{"--icon", "--fullscreen", "--kiosk"} {
		if strings.Contains(args, flag) {
			t.Fatalf("did not expect %s in %q", flag, args)
		}
	}
}

func TestInitializeTruncatesCommandFile(t *testing.T) {
	launcher := &fakeLauncher{}
	opts := testOptions(t, stubBinary(t))
	if err := os.MkdirAll(filepath.Dir(opts.CommandFile), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(opts.CommandFile, []byte("progress: 99\n"), 0o644); err != nil {
		t.Fatalf("seed command file: %v", err)
	}

	n := New(opts, WithLauncher(launcher))
	n.Initialize(context.Background(), Session{Title: "Setup", TotalItems: 1})
	n.AddItem("Foo", StatusSuccess, "Installed")
	n.Terminate()

	data, err := os.ReadFile(opts.CommandFile)
	if err != nil {
		t.Fatalf("read command file: %v", err)
	}
	if string(data) != "listitem: add, title: Foo, status: success, statustext: Installed\n" {
		t.Fatalf("unexpected command file contents: %q", data)
	}
}

func TestUpdateProgressClamps(t *testing.T) {
	n, _, writer := newTestNotifier(t)
	n.Initialize(context.Background(), Session{TotalItems: 1})

	n.UpdateProgress(-5)
	n.UpdateProgress(150)
	n.UpdateProgress(42)

	want := []string{"progress: 0", "progress: 100", "progress: 42"}
	if !reflect.DeepEqual(writer.lines(), want) {
		t.Fatalf("got %q, want %q", writer.lines(), want)
	}
	if _, _, percent := n.Progress(); percent != 42 {
		t.Fatalf("expected percent 42, got %d", percent)
	}
}

func TestUpdateItemCountsCompletions(t *testing.T) {
	n, _, writer := newTestNotifier(t)
	n.Initialize(context.Background(), Session{TotalItems: 4})

	n.UpdateItem("A", StatusWaiting, "Downloading...")
	n.UpdateItem("A", StatusSuccess, "Installed")
	n.UpdateItem("B", StatusFail, "Failed")

	want := []string{
		"listitem: update, title: A, status: waiting, statustext: Downloading...",
		"listitem: update, title: A, status: success, statustext: Installed",
		"progress: 25",
		"listitem: update, title: B, status: fail, statustext: Failed",
		"progress: 50",
	}
	if !reflect.DeepEqual(writer.lines(), want) {
		t.Fatalf("got %q, want %q", writer.lines(), want)
	}
	completed, total, percent := n.Progress()
	if completed != 2 || total != 4 || percent != 50 {
		t.Fatalf("unexpected progress %d/%d (%d%%)", completed, total, percent)
	}
}

func TestUpdateItemWithZeroTotalReportsZero(t *testing.T) {
	n, _, writer := newTestNotifier(t)
	n.Initialize(context.Background(), Session{TotalItems: 0})

	n.UpdateItem("A", StatusSuccess, "")

	lines := writer.lines()
	if lines[len(lines)-1] != "progress: 0" {
		t.Fatalf("expected progress 0, got %q", lines)
	}
}

func TestUpdateItemBeyondTotalClampsAt100(t *testing.T) {
	n, _, writer := newTestNotifier(t)
	n.Initialize(context.Background(), Session{TotalItems: 1})

	n.UpdateItem("A", StatusSuccess, "")
	n.UpdateItem("B", StatusSuccess, "")

	lines := writer.lines()
	if lines[len(lines)-1] != "progress: 100" {
		t.Fatalf("expected progress 100, got %q", lines)
	}
	if completed, _, _ := n.Progress(); completed != 2 {
		t.Fatalf("expected completions beyond total to be counted, got %d", completed)
	}
}

func TestCompleteEndsAtFullProgress(t *testing.T) {
	n, _, writer := newTestNotifier(t)
	n.Initialize(context.Background(), Session{TotalItems: 10})
	n.UpdateProgress(30)

	n.Complete("Done")

	want := []string{"progress: 30", "progresstext: Done", "progress: 100", "button1text: Close"}
	if !reflect.DeepEqual(writer.lines(), want) {
		t.Fatalf("got %q, want %q", writer.lines(), want)
	}
}

func TestCompleteUsesDefaultMessage(t *testing.T) {
	n, _, writer := newTestNotifier(t)
	n.Initialize(context.Background(), Session{})

	n.Complete("")

	if writer.lines()[0] != "progresstext: Setup Complete" {
		t.Fatalf("unexpected first command %q", writer.lines()[0])
	}
}

func TestSingleFieldUpdates(t *testing.T) {
	n, _, writer := newTestNotifier(t)
	n.Initialize(context.Background(), Session{})

	n.UpdateProgressText("Working")
	n.UpdateTitle("New Title")
	n.UpdateMessage("New Message")
	n.AddItem("Foo", StatusPending, "")

	want := []string{
		"progresstext: Working",
		"title: New Title",
		"message: New Message",
		"listitem: add, title: Foo, status: pending",
	}
	if !reflect.DeepEqual(writer.lines(), want) {
		t.Fatalf("got %q, want %q", writer.lines(), want)
	}
}

func TestCloseWithoutInitializeIsNoop(t *testing.T) {
	n, launcher, writer := newTestNotifier(t)

	n.Close()
	n.Close()
	n.Terminate()

	if len(writer.commands) != 0 || writer.resets != 0 {
		t.Fatalf("expected no writes, got %q (resets=%d)", writer.lines(), writer.resets)
	}
	if len(launcher.calls) != 0 {
		t.Fatalf("expected no launches, got %d", len(launcher.calls))
	}
	if n.State() != StateUninitialized {
		t.Fatalf("expected uninitialized state, got %s", n.State())
	}
}

func TestCloseSendsQuitThenTerminates(t *testing.T) {
	n, launcher, writer := newTestNotifier(t)
	n.Initialize(context.Background(), Session{})

	n.Close()

	lines := writer.lines()
	if len(lines) != 1 || lines[0] != "quit:" {
		t.Fatalf("expected quit command, got %q", lines)
	}
	if launcher.procs[0].killCount() != 1 {
		t.Fatalf("expected one kill, got %d", launcher.procs[0].killCount())
	}
	if n.State() != StateTerminated {
		t.Fatalf("expected terminated state, got %s", n.State())
	}

	n.UpdateProgress(10)
	n.Close()
	if len(writer.commands) != 1 {
		t.Fatalf("expected writes after close to be ignored, got %q", writer.lines())
	}
}

func TestTerminateSwallowsKillErrors(t *testing.T) {
	n, launcher, writer := newTestNotifier(t)
	n.Initialize(context.Background(), Session{})
	launcher.procs[0].killErr = errBoom

	n.Terminate()

	if n.State() != StateTerminated {
		t.Fatalf("expected terminated state, got %s", n.State())
	}
	n.UpdateTitle("ignored")
	if len(writer.commands) != 0 {
		t.Fatalf("expected no writes after terminate, got %q", writer.lines())
	}
}

func TestLaunchFailureLeavesNotifierStopped(t *testing.T) {
	n, launcher, writer := newTestNotifier(t)
	launcher.err = errBoom

	n.Initialize(context.Background(), Session{TotalItems: 2})
	n.AddItem("Foo", StatusPending, "")
	n.UpdateProgress(50)
	n.Close()

	if len(writer.commands) != 0 {
		t.Fatalf("expected no command writes, got %q", writer.lines())
	}
	if n.State() == StateRunning {
		t.Fatal("expected notifier not to be running")
	}

	launcher.err = nil
	n.Initialize(context.Background(), Session{})
	if n.State() != StateRunning {
		t.Fatalf("expected command file lock to be released after failed launch, state=%s", n.State())
	}
}

func TestWriteFailuresAreSwallowed(t *testing.T) {
	n, _, writer := newTestNotifier(t)
	n.Initialize(context.Background(), Session{TotalItems: 2})
	writer.writeErr = errBoom

	n.UpdateItem("A", StatusSuccess, "")

	if completed, _, percent := n.Progress(); completed != 1 || percent != 50 {
		t.Fatalf("expected counters to advance despite write failure, got %d (%d%%)", completed, percent)
	}
}

func TestInitializeReplacesRunningDialog(t *testing.T) {
	n, launcher, _ := newTestNotifier(t)
	n.Initialize(context.Background(), Session{TotalItems: 2})
	first := n.SessionID()
	n.UpdateItem("A", StatusSuccess, "")

	n.Initialize(context.Background(), Session{TotalItems: 5})

	if len(launcher.calls) != 2 {
		t.Fatalf("expected two launches, got %d", len(launcher.calls))
	}
	if launcher.procs[0].killCount() != 1 {
		t.Fatal("expected first dialog to be killed")
	}
	if n.SessionID() == first {
		t.Fatal("expected a new session id")
	}
	completed, total, percent := n.Progress()
	if completed != 0 || total != 5 || percent != 0 {
		t.Fatalf("expected counters reset, got %d/%d (%d%%)", completed, total, percent)
	}
}

// quitSignalWriter closes quit once the first quit command is written.
type quitSignalWriter struct {
	*recordingWriter
	quit chan struct{}
	seen bool
}

func (w *quitSignalWriter) Write(cmd Command) error {
	if err := w.recordingWriter.Write(cmd); err != nil {
		return err
	}
	if cmd == QuitCommand() && !w.seen {
		w.seen = true
		close(w.quit)
	}
	return nil
}

func TestCloseLeavesReplacementSessionRunning(t *testing.T) {
	launcher := &fakeLauncher{}
	writer := &quitSignalWriter{recordingWriter: &recordingWriter{}, quit: make(chan struct{})}
	opts := testOptions(t, stubBinary(t))
	opts.CloseGrace = 10 * time.Second
	n := New(opts, WithLauncher(launcher), WithWriter(writer))

	n.Initialize(context.Background(), Session{TotalItems: 1})
	first := n.SessionID()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		n.Close()
	}()

	select {
	case <-writer.quit:
	case <-time.After(5 * time.Second):
		t.Fatal("close never sent quit")
	}
	n.Initialize(context.Background(), Session{TotalItems: 3})

	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("close did not return after the first dialog exited")
	}

	if n.SessionID() == first {
		t.Fatal("expected the replacement session to be current")
	}
	if len(launcher.procs) != 2 {
		t.Fatalf("expected two launches, got %d", len(launcher.procs))
	}
	if got := launcher.procs[1].killCount(); got != 0 {
		t.Fatalf("expected replacement dialog to survive close, got %d kills", got)
	}
	if n.State() != StateRunning {
		t.Fatalf("expected running state, got %s", n.State())
	}

	n.Terminate()
	if got := launcher.procs[1].killCount(); got != 1 {
		t.Fatalf("expected replacement dialog to be killed once, got %d kills", got)
	}
}

func TestSecondNotifierCannotShareCommandFile(t *testing.T) {
	binary := stubBinary(t)
	opts := testOptions(t, binary)

	firstLauncher := &fakeLauncher{}
	first := New(opts, WithLauncher(firstLauncher), WithWriter(&recordingWriter{}))
	first.Initialize(context.Background(), Session{})
	defer first.Terminate()

	secondLauncher := &fakeLauncher{}
	second := New(opts, WithLauncher(secondLauncher), WithWriter(&recordingWriter{}))
	second.Initialize(context.Background(), Session{})

	if len(secondLauncher.calls) != 0 {
		t.Fatal("expected second notifier not to launch while the command file is locked")
	}
	if second.State() == StateRunning {
		t.Fatal("expected second notifier not to be running")
	}

	first.Terminate()
	second.Initialize(context.Background(), Session{})
	if second.State() != StateRunning {
		t.Fatalf("expected second notifier to start after release, got %s", second.State())
	}
	second.Terminate()
}

func TestRunClosesOnError(t *testing.T) {
	n, launcher, writer := newTestNotifier(t)

	err := n.Run(context.Background(), Session{TotalItems: 1}, func(ctx context.Context) error {
		n.AddItem("Foo", StatusPending, "")
		return errBoom
	})

	if !errors.Is(err, errBoom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	lines := writer.lines()
	if lines[len(lines)-1] != "quit:" {
		t.Fatalf("expected dialog to be closed, got %q", lines)
	}
	if launcher.procs[0].killCount() != 1 {
		t.Fatal("expected dialog process to be terminated")
	}
}

func TestRunClosesOnPanic(t *testing.T) {
	n, launcher, _ := newTestNotifier(t)

	func() {
		defer func() { _ = recover() }()
		_ = n.Run(context.Background(), Session{}, func(context.Context) error {
			panic("boom")
		})
	}()

	if n.State() != StateTerminated {
		t.Fatalf("expected terminated state after panic, got %s", n.State())
	}
	if launcher.procs[0].killCount() != 1 {
		t.Fatal("expected dialog process to be terminated")
	}
}

func TestRecorderReceivesSessionLifecycle(t *testing.T) {
	recorder := &fakeRecorder{}
	launcher := &fakeLauncher{}
	n := New(testOptions(t, stubBinary(t)), WithLauncher(launcher), WithWriter(&recordingWriter{}), WithRecorder(recorder))

	n.Initialize(context.Background(), Session{Title: "Setup", TotalItems: 2})
	n.UpdateItem("A", StatusSuccess, "")
	n.Terminate()

	kinds := make([]string, 0, len(recorder.events))
	for _, ev := range recorder.events {
		kinds = append(kinds, ev.kind)
	}
	want := []string{"start", "command", "command", "end"}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	start := recorder.events[0].rec
	if start.ID == "" || start.Title != "Setup" || start.TotalItems != 2 || start.PID != 1001 {
		t.Fatalf("unexpected start record: %+v", start)
	}
	progress := recorder.events[2]
	if progress.cmd != "progress: 50" || progress.rec.Percent != 50 || progress.rec.CompletedItems != 1 {
		t.Fatalf("unexpected progress event: %+v", progress)
	}
	end := recorder.events[3].rec
	if end.State != StateTerminated || end.EndedAt.IsZero() {
		t.Fatalf("unexpected end record: %+v", end)
	}
}

func TestRecorderErrorsDoNotStopNotifications(t *testing.T) {
	recorder := &fakeRecorder{err: errBoom}
	writer := &recordingWriter{}
	n := New(testOptions(t, stubBinary(t)), WithLauncher(&fakeLauncher{}), WithWriter(writer), WithRecorder(recorder))

	n.Initialize(context.Background(), Session{})
	n.UpdateTitle("Still works")

	if n.State() != StateRunning || len(writer.commands) != 1 {
		t.Fatalf("expected notifier to keep running, state=%s writes=%d", n.State(), len(writer.commands))
	}
	n.Terminate()
}
