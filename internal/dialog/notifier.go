package dialog

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"setupdialog/internal/config"
	"setupdialog/internal/deps"
	"setupdialog/internal/logging"
)

const (
	defaultCompleteMessage = "Setup Complete"
	defaultCloseGrace      = 500 * time.Millisecond
	recordTimeout          = 2 * time.Second
)

// Options describes the dialog executable and its command file.
type Options struct {
	Binary              string
	CommandFile         string
	ButtonText          string
	CompleteButtonText  string
	DefaultProgressText string
	CloseGrace          time.Duration
}

// OptionsFromConfig maps the [dialog] config section onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return Options{}
	}
	return Options{
		Binary:              cfg.Dialog.Binary,
		CommandFile:         cfg.Dialog.CommandFile,
		ButtonText:          cfg.Dialog.ButtonText,
		CompleteButtonText:  cfg.Dialog.CompleteButtonText,
		DefaultProgressText: cfg.Dialog.DefaultProgressText,
		CloseGrace:          cfg.CloseGrace(),
	}
}

// Session holds the arguments used to launch one dialog.
type Session struct {
	Title      string
	Message    string
	TotalItems int
	Icon       string
	Fullscreen bool
	Kiosk      bool
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithLogger sets the log sink.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithLauncher injects a custom launcher (primarily for tests).
func WithLauncher(l Launcher) Option {
	return func(n *Notifier) {
		if l != nil {
			n.launcher = l
		}
	}
}

// WithWriter injects a custom command writer (primarily for tests).
func WithWriter(w CommandWriter) Option {
	return func(n *Notifier) {
		if w != nil {
			n.writer = w
		}
	}
}

// WithRecorder attaches a session journal.
func WithRecorder(r Recorder) Option {
	return func(n *Notifier) {
		if r != nil {
			n.recorder = r
		}
	}
}

// Notifier drives one external progress dialog. The zero value is not usable;
// construct with New. A Notifier is safe for concurrent use.
type Notifier struct {
	opts      Options
	available bool

	logger   *slog.Logger
	launcher Launcher
	writer   CommandWriter
	recorder Recorder
	lock     *commandLock
	sampler  *logging.ProgressSampler

	mu             sync.Mutex
	state          State
	running        bool
	sessionID      string
	session        Session
	startedAt      time.Time
	totalItems     int
	completedItems int
	percent        int
	proc           Process
}

// New builds a notifier. Availability is decided once here by looking for the
// dialog executable; without it the notifier is headless.
func New(opts Options, options ...Option) *Notifier {
	opts.Binary = strings.TrimSpace(opts.Binary)
	if opts.Binary == "" {
		opts.Binary = config.DefaultDialogBinary()
	}
	opts.CommandFile = strings.TrimSpace(opts.CommandFile)
	if opts.CommandFile == "" {
		opts.CommandFile = config.DefaultCommandFile()
	}
	if opts.ButtonText == "" {
		opts.ButtonText = "Please Wait"
	}
	if opts.CompleteButtonText == "" {
		opts.CompleteButtonText = "Close"
	}
	if opts.DefaultProgressText == "" {
		opts.DefaultProgressText = "Preparing..."
	}
	if opts.CloseGrace <= 0 {
		opts.CloseGrace = defaultCloseGrace
	}

	n := &Notifier{
		opts:     opts,
		logger:   logging.NewNop(),
		launcher: ExecLauncher{},
		writer:   NewFileWriter(opts.CommandFile),
		recorder: noopRecorder{},
		lock:     newCommandLock(opts.CommandFile),
		sampler:  logging.NewProgressSampler(10),
	}
	for _, option := range options {
		option(n)
	}
	n.logger = logging.NewComponentLogger(n.logger, "dialog").With(
		logging.String(logging.FieldCommandFile, opts.CommandFile),
	)

	status := deps.CheckBinary(deps.DialogRequirement(opts.Binary))
	n.available = status.Available
	if n.available {
		n.opts.Binary = status.Path
	} else {
		n.state = StateHeadless
		n.logger.Debug("progress dialog unavailable; running headless",
			logging.String("binary", opts.Binary),
			logging.String("detail", status.Detail),
		)
	}
	return n
}

// Available reports whether the dialog executable was found at construction.
func (n *Notifier) Available() bool {
	return n.available
}

// CommandFile returns the command file this notifier writes to.
func (n *Notifier) CommandFile() string {
	return n.opts.CommandFile
}

// State returns the lifecycle phase.
func (n *Notifier) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// SessionID returns the identifier of the current or most recent session.
func (n *Notifier) SessionID() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sessionID
}

// Progress returns the completion counters and the last computed percentage.
func (n *Notifier) Progress() (completed, total, percent int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.completedItems, n.totalItems, n.percent
}

// Initialize truncates the command file and launches the dialog. Failures are
// logged and leave the notifier not running. A dialog that is still running is
// terminated first.
func (n *Notifier) Initialize(ctx context.Context, s Session) {
	if !n.available {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.running {
		n.logger.Info("replacing running progress dialog", logging.String(logging.FieldSessionID, n.sessionID))
		n.terminateLocked()
	}

	n.session = s
	n.totalItems = max(s.TotalItems, 0)
	n.completedItems = 0
	n.percent = 0
	n.sampler.Reset()
	n.sessionID = uuid.NewString()
	n.startedAt = time.Now().UTC()

	logger := logging.WithContext(logging.WithSessionID(ctx, n.sessionID), n.logger)

	if err := n.lock.acquire(); err != nil {
		logging.WarnWithContext(logger, "progress dialog not started", "dialog_lock_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "close the other setup dialog or use a different command_file"),
		)
		return
	}
	if err := n.writer.Reset(); err != nil {
		logging.ErrorWithContext(logger, "progress dialog not started", "dialog_command_file_failed", logging.Error(err))
		n.releaseLockLocked()
		return
	}

	proc, err := n.launcher.Launch(n.opts.Binary, n.buildArgs(s))
	if err != nil {
		logging.ErrorWithContext(logger, "progress dialog launch failed", "dialog_launch_failed",
			logging.String("binary", n.opts.Binary),
			logging.Error(err),
		)
		n.releaseLockLocked()
		return
	}

	n.proc = proc
	n.running = true
	n.state = StateRunning
	logger.Info("progress dialog launched",
		logging.String("title", s.Title),
		logging.Int("total_items", n.totalItems),
		logging.Int("pid", proc.Pid()),
		logging.Bool("kiosk", s.Kiosk),
	)
	n.record(func(ctx context.Context, rec SessionRecord) error {
		return n.recorder.SessionStarted(ctx, rec)
	})
}

func (n *Notifier) buildArgs(s Session) []string {
	args := []string{
		"--title", s.Title,
		"--message", s.Message,
		"--progressbar",
		"--progress", "0",
		"--progresstext", n.opts.DefaultProgressText,
		"--commandfile", n.opts.CommandFile,
		"--button1text", n.opts.ButtonText,
	}
	if icon := strings.TrimSpace(s.Icon); icon != "" {
		args = append(args, "--icon", icon)
	}
	if s.Fullscreen {
		args = append(args, "--fullscreen")
	}
	if s.Kiosk {
		args = append(args, "--kiosk")
	}
	return args
}

// AddItem appends a new list item row.
func (n *Notifier) AddItem(name string, status ItemStatus, text string) {
	n.send(ListItemCommand(ListAdd, name, status, text))
}

// UpdateItem changes a list item. Success and fail count the item as complete
// and push a new overall percentage.
func (n *Notifier) UpdateItem(name string, status ItemStatus, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.running {
		return
	}
	n.writeLocked(ListItemCommand(ListUpdate, name, status, text))
	if !status.completes() {
		return
	}
	n.completedItems++
	if n.completedItems > n.totalItems {
		n.logger.Debug("more items completed than announced",
			logging.Int("completed_items", n.completedItems),
			logging.Int("total_items", n.totalItems),
		)
	}
	n.setProgressLocked(percentComplete(n.completedItems, n.totalItems))
}

// UpdateProgress sets the progress bar, clamped to [0,100].
func (n *Notifier) UpdateProgress(percent int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.running {
		return
	}
	n.setProgressLocked(percent)
}

func (n *Notifier) UpdateProgressText(text string) { n.send(ProgressTextCommand(text)) }

func (n *Notifier) UpdateTitle(text string) { n.send(TitleCommand(text)) }

func (n *Notifier) UpdateMessage(text string) { n.send(MessageCommand(text)) }

// Complete fills the progress bar and relabels the button. An empty message
// shows "Setup Complete".
func (n *Notifier) Complete(message string) {
	if strings.TrimSpace(message) == "" {
		message = defaultCompleteMessage
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.running {
		return
	}
	n.writeLocked(ProgressTextCommand(message))
	n.setProgressLocked(100)
	n.writeLocked(ButtonTextCommand(n.opts.CompleteButtonText))
}

// Close asks the dialog to quit, waits up to the grace period for it to exit,
// then terminates it. It is a no-op when no dialog is running. A session started
// by another caller during the grace period is left running.
func (n *Notifier) Close() {
	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		return
	}
	n.writeLocked(QuitCommand())
	proc := n.proc
	sessionID := n.sessionID
	n.mu.Unlock()

	timer := time.NewTimer(n.opts.CloseGrace)
	defer timer.Stop()
	select {
	case <-proc.Done():
	case <-timer.C:
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sessionID != sessionID {
		n.logger.Debug("progress dialog replaced during close",
			logging.String("closed_session_id", sessionID),
			logging.String(logging.FieldSessionID, n.sessionID),
		)
		return
	}
	n.terminateLocked()
}

// Terminate kills the dialog if it is running. Kill errors are logged; the
// notifier always ends up not running.
func (n *Notifier) Terminate() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.terminateLocked()
}

func (n *Notifier) terminateLocked() {
	if !n.running {
		return
	}
	if n.proc != nil {
		if err := n.proc.Kill(); err != nil {
			if errors.Is(err, os.ErrProcessDone) {
				n.logger.Debug("progress dialog already exited")
			} else {
				logging.WarnWithContext(n.logger, "progress dialog kill failed", "dialog_kill_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "dialog window may stay open"),
				)
			}
		}
	}
	n.running = false
	n.state = StateTerminated
	n.record(func(ctx context.Context, rec SessionRecord) error {
		rec.EndedAt = time.Now().UTC()
		return n.recorder.SessionEnded(ctx, rec)
	})
	n.proc = nil
	n.releaseLockLocked()
	n.logger.Info("progress dialog closed",
		logging.String(logging.FieldSessionID, n.sessionID),
		logging.Int("completed_items", n.completedItems),
		logging.Int("total_items", n.totalItems),
	)
}

// Run launches the dialog, calls fn, and closes the dialog on every return
// path. The context passed to fn carries the session ID for logging.
func (n *Notifier) Run(ctx context.Context, s Session, fn func(context.Context) error) error {
	n.Initialize(ctx, s)
	defer n.Close()
	if id := n.SessionID(); id != "" {
		ctx = logging.WithSessionID(ctx, id)
	}
	return fn(ctx)
}

func (n *Notifier) send(cmd Command) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.running {
		return
	}
	n.writeLocked(cmd)
}

func (n *Notifier) setProgressLocked(percent int) {
	n.percent = clampPercent(percent)
	if n.sampler.ShouldLog(n.percent) {
		n.logger.Debug("progress updated",
			logging.String(logging.FieldSessionID, n.sessionID),
			logging.Int("percent", n.percent),
		)
	}
	n.writeLocked(ProgressCommand(n.percent))
}

func (n *Notifier) writeLocked(cmd Command) {
	if err := n.writer.Write(cmd); err != nil {
		logging.WarnWithContext(n.logger, "dialog command write failed", "dialog_write_failed",
			logging.String(logging.FieldSessionID, n.sessionID),
			logging.String("command", string(cmd)),
			logging.Error(err),
		)
		return
	}
	n.record(func(ctx context.Context, rec SessionRecord) error {
		return n.recorder.CommandWritten(ctx, rec, cmd)
	})
}

func (n *Notifier) releaseLockLocked() {
	if err := n.lock.release(); err != nil {
		n.logger.Warn("command file unlock failed", logging.Error(err))
	}
}

// record hands a snapshot to the recorder, logging rather than returning failures.
func (n *Notifier) record(fn func(context.Context, SessionRecord) error) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := fn(ctx, n.snapshotLocked()); err != nil {
		logging.WarnWithContext(n.logger, "session journal write failed", "journal_write_failed",
			logging.String(logging.FieldSessionID, n.sessionID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "session history incomplete"),
		)
	}
}

func (n *Notifier) snapshotLocked() SessionRecord {
	rec := SessionRecord{
		ID:             n.sessionID,
		Title:          n.session.Title,
		Message:        n.session.Message,
		CommandFile:    n.opts.CommandFile,
		TotalItems:     n.totalItems,
		CompletedItems: n.completedItems,
		Percent:        n.percent,
		State:          n.state,
		StartedAt:      n.startedAt,
	}
	if n.proc != nil {
		rec.PID = n.proc.Pid()
	}
	return rec
}
