package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"setupdialog/internal/dialog"
)

func newSendCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "send <command...>",
		Short: "Append a raw command line to the dialog command file",
		Long: "Append a raw command line to the configured command file, for example:\n" +
			"  setupdialog send progresstext: Almost there\n" +
			"  setupdialog send quit:",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			line := strings.TrimSpace(strings.Join(args, " "))
			if line == "" {
				return errors.New("command is empty")
			}

			writer := dialog.NewFileWriter(cfg.Dialog.CommandFile)
			command := dialog.RawCommand(line)
			if err := writer.Write(command); err != nil {
				return fmt.Errorf("send command: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Appended %q to %s\n", string(command), writer.Path())
			return nil
		},
	}
}
