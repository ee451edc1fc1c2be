package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"checklist/internal/daemonctl"
	"checklist/internal/ipc"
	"checklist/internal/todos"
)

func newDBCommand(ctx *commandContext) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect and maintain the todo database",
	}
	dbCmd.AddCommand(newDBHealthCommand(ctx))
	dbCmd.AddCommand(newDBClearCommand(ctx))
	return dbCmd
}

func newDBHealthCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show database diagnostics reported by the daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd.Context(), func(callCtx context.Context, client *ipc.Client) error {
				health, err := client.DatabaseHealth(callCtx)
				if err != nil {
					return fmt.Errorf("database health: %w", err)
				}
				if asJSON {
					return writeJSON(cmd, health)
				}
				out := cmd.OutOrStdout()
				healthReport(health, isTerminal(out)).write(out)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print diagnostics as JSON")
	return cmd
}

func healthReport(h *ipc.DatabaseHealthResponse, colorize bool) *statusReport {
	report := newStatusReport(colorize)
	report.section("Database")
	report.row("Path", statusInfo, h.DBPath)
	report.check("Exists", h.DatabaseExists, yesNo(h.DatabaseExists))
	report.check("Readable", h.DatabaseReadable, yesNo(h.DatabaseReadable))
	report.row("Schema version", statusInfo, fmt.Sprint(h.SchemaVersion))
	report.check("Todos table", h.TableExists, yesNo(h.TableExists))
	if len(h.MissingColumns) > 0 {
		report.row("Columns", statusError, "missing "+strings.Join(h.MissingColumns, ", "))
	} else {
		report.row("Columns", statusOK, strings.Join(h.ColumnsPresent, ", "))
	}
	report.check("Integrity", h.IntegrityCheck, yesNo(h.IntegrityCheck))
	report.row("Todos", statusInfo, fmt.Sprint(h.TotalTodos))
	if h.Error != "" {
		report.row("Error", statusError, h.Error)
	}
	return report
}

func newDBClearCommand(ctx *commandContext) *cobra.Command {
	var confirmed bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every todo (daemon must be stopped)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return errors.New("refusing to delete all todos without --yes")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			running, pid, err := daemonctl.ProcessInfo(cmd.Context(), ctx.socketPath())
			if err != nil {
				return err
			}
			if running {
				return fmt.Errorf("daemon is running (pid %d); stop it with `checklist stop` first", pid)
			}

			store, err := todos.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear todos: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d todos\n", removed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm deleting every todo")
	return cmd
}
