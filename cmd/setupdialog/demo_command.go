package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"setupdialog/internal/dialog"
	"setupdialog/internal/logging"
)

type demoOptions struct {
	items    int
	delay    time.Duration
	hold     time.Duration
	title    string
	message  string
	failItem int
	skipItem int
}

func newDemoCommand(ctx *commandContext) *cobra.Command {
	opts := demoOptions{}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a simulated setup session through the progress dialog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.items < 0 {
				return fmt.Errorf("--items must be >= 0")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			defer ctx.releaseLogger()

			dialogOpts := dialog.OptionsFromConfig(cfg)
			options := []dialog.Option{dialog.WithLogger(logger)}
			notifier := dialog.New(dialogOpts, options...)
			// Headless runs never touch the journal.
			if notifier.Available() {
				store, err := ctx.openJournal()
				if err != nil {
					logging.WarnWithContext(logger, "session journal unavailable", "journal_open_failed",
						logging.Error(err),
						logging.String(logging.FieldImpact, "session will not appear in history"),
					)
				} else if store != nil {
					defer store.Close()
					options = append(options, dialog.WithRecorder(store))
					notifier = dialog.New(dialogOpts, options...)
				}
			}

			out := cmd.OutOrStdout()
			if !notifier.Available() {
				fmt.Fprintf(out, "Progress dialog not found at %s; running headless\n", cfg.Dialog.Binary)
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			session := dialog.Session{
				Title:      opts.title,
				Message:    opts.message,
				TotalItems: opts.items,
				Icon:       cfg.Dialog.Icon,
				Fullscreen: cfg.Dialog.Fullscreen,
				Kiosk:      cfg.Dialog.Kiosk,
			}
			runErr := notifier.Run(runCtx, session, func(ctx context.Context) error {
				return runDemo(ctx, notifier, opts)
			})

			completed, total, percent := notifier.Progress()
			if id := notifier.SessionID(); id != "" {
				fmt.Fprintf(out, "Session %s: %d/%d items (%d%%)\n", id, completed, total, percent)
			}
			if errors.Is(runErr, context.Canceled) {
				fmt.Fprintln(out, "Demo interrupted")
				return nil
			}
			return runErr
		},
	}

	cmd.Flags().IntVarP(&opts.items, "items", "n", 5, "Number of simulated packages")
	cmd.Flags().DurationVar(&opts.delay, "delay", time.Second, "Pause between simulated steps")
	cmd.Flags().DurationVar(&opts.hold, "hold", 0, "Keep the completed dialog open for this long")
	cmd.Flags().StringVar(&opts.title, "title", "Setting up your device", "Dialog title")
	cmd.Flags().StringVar(&opts.message, "message", "Please wait while software is installed.", "Dialog message")
	cmd.Flags().IntVar(&opts.failItem, "fail-item", 0, "1-based package number to report as failed (0 for none)")
	cmd.Flags().IntVar(&opts.skipItem, "skip-item", 0, "1-based package number to report as skipped (0 for none)")
	return cmd
}

// runDemo walks every simulated package through the download and install
// helpers, then completes the dialog.
func runDemo(ctx context.Context, n *dialog.Notifier, opts demoOptions) error {
	names := make([]string, 0, opts.items)
	for i := range opts.items {
		names = append(names, fmt.Sprintf("Package %d", i+1))
	}

	n.NotifyPhaseStarted("preparing")
	for _, name := range names {
		n.AddItem(name, dialog.StatusPending, "")
	}
	if err := pause(ctx, opts.delay); err != nil {
		return err
	}

	n.NotifyPhaseStarted("installing software")
	for i, name := range names {
		switch i + 1 {
		case opts.skipItem:
			n.NotifyPackageSkipped(name, "already installed")
			continue
		case opts.failItem:
			n.NotifyDownloadStarted(name)
			if err := pause(ctx, opts.delay); err != nil {
				return err
			}
			n.NotifyPackageFailure(name, errors.New("simulated download error"))
			continue
		}

		n.NotifyDownloadStarted(name)
		if err := pause(ctx, opts.delay); err != nil {
			return err
		}
		n.NotifyInstallStarted(name)
		if err := pause(ctx, opts.delay); err != nil {
			return err
		}
		n.NotifyPackageSuccess(name)
	}

	message := "Setup Complete"
	if opts.failItem > 0 && opts.failItem <= len(names) {
		message = "Setup finished with errors"
	}
	n.Complete(message)
	return pause(ctx, opts.hold)
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
