package dialog

import (
	"fmt"
	"os"
	"os/exec"
)

// Process is a handle to a launched dialog.
type Process interface {
	Pid() int
	Kill() error
	// Done is closed once the process has exited.
	Done() <-chan struct{}
}

// Launcher starts the dialog executable.
type Launcher interface {
	Launch(binary string, args []string) (Process, error)
}

// ExecLauncher starts the dialog as a child process. The child is not tied to
// a context; it lives until it quits or is killed.
type ExecLauncher struct{}

// Launch spawns binary without waiting for it to exit.
func (ExecLauncher) Launch(binary string, args []string) (Process, error) {
	cmd := exec.Command(binary, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", binary, err)
	}
	proc := &execProcess{cmd: cmd, done: make(chan struct{})}
	go proc.reap()
	return proc, nil
}

type execProcess struct {
	cmd  *exec.Cmd
	done chan struct{}
}

func (p *execProcess) reap() {
	_ = p.cmd.Wait()
	close(p.done)
}

func (p *execProcess) Pid() int { return p.cmd.Process.Pid }

func (p *execProcess) Done() <-chan struct{} { return p.done }

func (p *execProcess) Kill() error {
	select {
	case <-p.done:
		return os.ErrProcessDone
	default:
	}
	return p.cmd.Process.Kill()
}
