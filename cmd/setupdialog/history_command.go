package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"setupdialog/internal/journal"
)

const historyTimeLayout = "2006-01-02 15:04:05"

type sessionJSON struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Message        string     `json:"message,omitempty"`
	CommandFile    string     `json:"command_file"`
	TotalItems     int        `json:"total_items"`
	CompletedItems int        `json:"completed_items"`
	Percent        int        `json:"percent"`
	State          string     `json:"state"`
	PID            int        `json:"pid"`
	StartedAt      time.Time  `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
}

func toSessionJSON(s journal.Session) sessionJSON {
	return sessionJSON{
		ID:             s.ID,
		Title:          s.Title,
		Message:        s.Message,
		CommandFile:    s.CommandFile,
		TotalItems:     s.TotalItems,
		CompletedItems: s.CompletedItems,
		Percent:        s.Percent,
		State:          s.State,
		PID:            s.PID,
		StartedAt:      s.StartedAt,
		EndedAt:        s.EndedAt,
	}
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent dialog sessions from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := requireJournal(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			sessions, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}

			if asJSON {
				out := make([]sessionJSON, 0, len(sessions))
				for _, s := range sessions {
					out = append(out, toSessionJSON(s))
				}
				return writeJSON(cmd, out)
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions recorded")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), sessionTable(sessions))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum sessions to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	cmd.AddCommand(newHistoryPruneCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show the commands written during a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := requireJournal(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			id := strings.TrimSpace(args[0])
			session, err := store.Session(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("load session %s: %w", id, err)
			}
			entries, err := store.Commands(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("load commands: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, sessionTable([]journal.Session{*session}))
			rows := make([][]string, 0, len(entries))
			for i, entry := range entries {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					entry.WrittenAt.Local().Format(historyTimeLayout),
					entry.Line,
				})
			}
			fmt.Fprintln(out, renderTable([]string{"#", "Written", "Command"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft}))
			return nil
		},
	}
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete sessions older than a duration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			store, err := requireJournal(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d session(s)\n", removed)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Remove sessions started before now minus this duration")
	return cmd
}

func requireJournal(ctx *commandContext) (*journal.Store, error) {
	store, err := ctx.openJournal()
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("session journal is disabled (set [journal] enabled = true)")
	}
	return store, nil
}

func sessionTable(sessions []journal.Session) string {
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		ended := "-"
		if s.EndedAt != nil {
			ended = s.EndedAt.Local().Format(historyTimeLayout)
		}
		rows = append(rows, []string{
			s.ID,
			s.Title,
			s.State,
			fmt.Sprintf("%d/%d", s.CompletedItems, s.TotalItems),
			fmt.Sprintf("%d%%", s.Percent),
			s.StartedAt.Local().Format(historyTimeLayout),
			ended,
		})
	}
	return renderTable(
		[]string{"Session", "Title", "State", "Items", "Progress", "Started", "Ended"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	)
}
