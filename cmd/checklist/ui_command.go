package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"checklist/internal/logging"
	"checklist/internal/tui"
)

func newUICommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive todo list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(os.Stdin) || !isTerminal(cmd.OutOrStdout()) {
				return errors.New("checklist ui requires an interactive terminal; use `checklist list` instead")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("client logger: %w", err)
			}

			client, err := ctx.dialClient()
			if err != nil {
				return err
			}
			defer client.Close()

			logger.Info("tui: client ready",
				logging.String("socket", ctx.socketPath()),
				logging.String(logging.FieldEventType, "tui_started"),
			)
			return tui.Run(cmd.Context(), client, logger, ctx.clientTimeout())
		},
	}
}
