package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"setupdialog/internal/journal"
	"setupdialog/internal/preflight"
)

type statusCheckJSON struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

type statusJSON struct {
	ConfigPath   string            `json:"config_path"`
	ConfigExists bool              `json:"config_exists"`
	CommandFile  string            `json:"command_file"`
	Headless     bool              `json:"headless"`
	Checks       []statusCheckJSON `json:"checks"`
	LastSession  *sessionJSON      `json:"last_session,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show dialog availability, command file access, and the last session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cfg)
			dialogCheck := preflight.CheckDialogBinary(cfg.Dialog.Binary)

			var latest *journal.Session
			journalNote := "disabled"
			store, err := ctx.openJournal()
			if err != nil {
				journalNote = err.Error()
			} else if store != nil {
				defer store.Close()
				latest, err = store.Latest(cmd.Context())
				switch {
				case errors.Is(err, journal.ErrNotFound):
					journalNote = "no sessions recorded"
				case err != nil:
					journalNote = err.Error()
				default:
					journalNote = ""
				}
			}

			if asJSON {
				out := statusJSON{
					ConfigPath:   ctx.configPath,
					ConfigExists: ctx.configSeen,
					CommandFile:  cfg.Dialog.CommandFile,
					Headless:     !dialogCheck.Passed,
				}
				for _, r := range results {
					out.Checks = append(out.Checks, statusCheckJSON(r))
				}
				if latest != nil {
					s := toSessionJSON(*latest)
					out.LastSession = &s
				}
				return writeJSON(cmd, out)
			}

			report := statusReport{colorize: shouldColorize(cmd.OutOrStdout())}
			env := report.section("Environment")
			configDetail := ctx.configPath
			if !ctx.configSeen {
				configDetail += " (not found; defaults in use)"
			}
			env.add("Config", statusInfo, configDetail)
			env.add("Command file", statusInfo, cfg.Dialog.CommandFile)
			for _, r := range results {
				env.add(r.Name, checkKind(r, dialogCheck.Name), r.Detail)
			}
			env.add("Headless", statusInfo, yesNo(!dialogCheck.Passed))

			last := report.section("Last session")
			if latest == nil {
				last.add("Journal", statusInfo, journalNote)
			} else {
				last.raw = sessionTable([]journal.Session{*latest})
			}

			fmt.Fprintln(cmd.OutOrStdout(), report.render())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

// checkKind downgrades a missing dialog binary to a warning since the
// notifier keeps working headless.
func checkKind(r preflight.Result, dialogName string) statusKind {
	switch {
	case r.Passed:
		return statusOK
	case r.Name == dialogName:
		return statusWarn
	default:
		return statusError
	}
}
