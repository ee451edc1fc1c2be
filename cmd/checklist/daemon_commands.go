package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"checklist/internal/daemonctl"
	"checklist/internal/daemonrun"
)

const (
	startWaitTimeout = 10 * time.Second
	stopGracePeriod  = 5 * time.Second
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	var startDiagnostic bool
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the checklist daemon in the background",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}
			result, err := daemonctl.EnsureStarted(
				cmd.Context(),
				ctx.socketPath(),
				exe,
				daemonLaunchOptions(ctx, startDiagnostic),
				startWaitTimeout,
			)
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			switch result.State {
			case daemonctl.StartStateStarted:
				fmt.Fprintln(stdout, withPID("Daemon started", result.PID))
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, withPID("Daemon already running", result.PID))
			}
			return nil
		},
	}
	startCmd.Flags().BoolVar(&startDiagnostic, "diagnostic", false, "Enable diagnostic mode with separate DEBUG logs")

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the checklist daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			result, err := daemonctl.StopAndTerminate(cmd.Context(), ctx.configValue(), stopGracePeriod)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if result.ForcedKill {
				fmt.Fprintf(stdout, "Daemon did not exit within %s; killed pid %d\n", stopGracePeriod, result.PID)
			}
			fmt.Fprintln(stdout, "Daemon stopped")
			return nil
		},
	}

	var statusJSON bool
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and database status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := daemonctl.BuildStatusSnapshot(cmd.Context(), ctx.configValue())
			if err != nil {
				return err
			}
			if statusJSON {
				return writeJSON(cmd, snapshot.Status)
			}
			stdout := cmd.OutOrStdout()
			statusReportFor(snapshot, isTerminal(stdout)).write(stdout)
			return nil
		},
	}
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print status as JSON")

	return []*cobra.Command{startCmd, stopCmd, statusCmd}
}

func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	var diagnostic bool
	cmd := &cobra.Command{
		Use:          "daemon",
		Short:        "Run the checklist daemon in the foreground",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx.diagnostic = &diagnostic
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:    ctx.resolvedLogLevel(cfg),
				Development: ctx.logDevelopment(cfg),
				Diagnostic:  ctx.diagnosticMode(),
			})
		},
	}
	cmd.Flags().BoolVar(&diagnostic, "diagnostic", false, "Enable diagnostic mode with separate DEBUG logs")
	return cmd
}

func statusReportFor(snapshot *daemonctl.Snapshot, colorize bool) *statusReport {
	status := snapshot.Status
	report := newStatusReport(colorize)
	report.section("Daemon")
	if status.Running {
		detail := fmt.Sprintf("Running (pid %d)", status.PID)
		if started := strings.TrimSpace(status.StartedAt); started != "" {
			detail += ", started " + started
		}
		report.row("Daemon", statusOK, detail)
	} else {
		report.row("Daemon", statusWarn, "Not running")
	}
	if status.APIAddress != "" {
		report.row("HTTP API", statusInfo, status.APIAddress)
	}
	report.row("Socket", statusInfo, status.SocketPath)
	report.row("Database", statusInfo, status.DBPath)

	report.section("Todos")
	if status.StatsError != "" {
		report.row("Totals", statusError, status.StatsError)
	} else {
		todos := status.Todos
		report.text(renderTable(
			[]string{"Total", "Completed", "Pending"},
			[][]string{{fmt.Sprint(todos.Total), fmt.Sprint(todos.Completed), fmt.Sprint(todos.Pending)}},
			[]columnAlignment{alignRight, alignRight, alignRight},
		))
	}

	if len(snapshot.Checks) > 0 {
		report.section("Preflight")
		for _, result := range snapshot.Checks {
			report.check(result.Name, result.Passed, result.Detail)
		}
	}
	return report
}

func withPID(message string, pid int) string {
	if pid <= 0 {
		return message
	}
	return fmt.Sprintf("%s (pid %d)", message, pid)
}

func daemonExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return exe, nil
}

func daemonLaunchOptions(ctx *commandContext, diagnostic bool) daemonctl.LaunchOptions {
	opts := daemonctl.LaunchOptions{
		ConfigPath: ctx.configPath(),
		Diagnostic: diagnostic,
	}
	if ctx.logLevelFlag != nil {
		opts.LogLevel = strings.TrimSpace(*ctx.logLevelFlag)
	}
	return opts
}
