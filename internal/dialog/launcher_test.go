//go:build !windows

package dialog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dialog")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestExecLauncherKillsRunningProcess(t *testing.T) {
	script := writeScript(t, "sleep 30")

	proc, err := ExecLauncher{}.Launch(script, nil)
	if err != nil {
		t.Fatalf("Launch returned error: %v", err)
	}
	if proc.Pid() <= 0 {
		t.Fatalf("expected pid, got %d", proc.Pid())
	}
	if err := proc.Kill(); err != nil {
		t.Fatalf("Kill returned error: %v", err)
	}
	select {
	case <-proc.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("process did not exit after kill")
	}
	if err := proc.Kill(); !errors.Is(err, os.ErrProcessDone) {
		t.Fatalf("expected ErrProcessDone after exit, got %v", err)
	}
}

func TestExecLauncherReportsMissingBinary(t *testing.T) {
	if _, err := (ExecLauncher{}).Launch(filepath.Join(t.TempDir(), "nope"), nil); err == nil {
		t.Fatal("expected launch error for missing binary")
	}
}

func TestNotifierDrivesRealProcess(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args.txt")
	script := writeScript(t, `printf '%s\n' "$@" > "`+argsFile+`"
exec sleep 30`)
	opts := Options{
		Binary:      script,
		CommandFile: filepath.Join(t.TempDir(), "shared", "dialog.log"),
		CloseGrace:  10 * time.Millisecond,
	}

	n := New(opts)
	err := n.Run(context.Background(), Session{Title: "Setup", Message: "Working", TotalItems: 2}, func(context.Context) error {
		waitForArgs(t, argsFile, "--commandfile\n"+opts.CommandFile+"\n--button1text\nPlease Wait\n")
		n.AddItem("A", StatusPending, "")
		n.NotifyPackageSuccess("A")
		n.Complete("Done")
		return nil
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if n.State() != StateTerminated {
		t.Fatalf("expected terminated state, got %s", n.State())
	}

	data, err := os.ReadFile(opts.CommandFile)
	if err != nil {
		t.Fatalf("read command file: %v", err)
	}
	want := strings.Join([]string{
		"listitem: add, title: A, status: pending",
		"listitem: update, title: A, status: success, statustext: Installed",
		"progress: 50",
		"progresstext: Done",
		"progress: 100",
		"button1text: Close",
		"quit:",
	}, "\n") + "\n"
	if string(data) != want {
		t.Fatalf("unexpected command file:\n%s", data)
	}
}

func waitForArgs(t *testing.T, path, want string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		args, err := os.ReadFile(path)
		if err == nil && strings.Contains(string(args), want) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("dialog did not receive expected args: %q (err=%v)", args, err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
