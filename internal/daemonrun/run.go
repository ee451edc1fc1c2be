package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"checklist/internal/config"
	"checklist/internal/daemon"
	"checklist/internal/ipc"
	"checklist/internal/logging"
	"checklist/internal/preflight"
	"checklist/internal/todos"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
	Diagnostic  bool
}

// Run starts the checklist daemon and blocks until cmdCtx is canceled or the
// process receives SIGINT/SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	runStamp := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("checklist-%s.log", runStamp))

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	var debugLogPath string
	if opts.Diagnostic {
		debugDir := filepath.Join(cfg.Paths.LogDir, "debug")
		debugLogPath = filepath.Join(debugDir, fmt.Sprintf("checklist-%s.log", runStamp))
		debugHandler, debugErr := logging.NewHandler(logging.Options{
			Level:            "debug",
			Format:           "json",
			OutputPaths:      []string{debugLogPath},
			ErrorOutputPaths: []string{debugLogPath},
			Development:      true,
		})
		if debugErr != nil {
			fmt.Fprintf(os.Stderr, "warn: unable to initialize debug logger: %v\n", debugErr)
		} else {
			logger = logging.TeeLogger(logger, debugHandler)
			if err := ensureCurrentLogPointer(debugDir, debugLogPath); err != nil {
				fmt.Fprintf(os.Stderr, "warn: unable to update debug/%s link: %v\n", logging.DaemonLogFile, err)
			}
			logger.Info("diagnostic mode enabled",
				logging.String(logging.FieldEventType, "diagnostic_mode_enabled"),
				logging.String("debug_log_path", debugLogPath),
			)
		}
	}

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update %s link: %v\n", logging.DaemonLogFile, err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "checklist-*.log", Exclude: []string{logPath, filepath.Join(cfg.Paths.LogDir, logging.ClientLogFile)}},
		logging.RetentionTarget{Dir: filepath.Join(cfg.Paths.LogDir, "debug"), Pattern: "checklist-*.log", Exclude: []string{debugLogPath}},
	)

	results := preflight.RunAll(signalCtx, cfg)
	logPreflight(logger, results)
	if err := preflight.Err(results); err != nil {
		return err
	}

	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := todos.Open(cfg)
	if err != nil {
		logging.ErrorWithContext(logger, "open todo store", "todo_store_open_failed",
			logging.Error(err),
			logging.String("db", cfg.DatabasePath()),
			logging.String(logging.FieldErrorHint, "run 'checklist db clear --yes' if the schema version does not match"),
		)
		return err
	}

	d, err := daemon.New(cfg, store, logger)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	// The lock must be held before the IPC server replaces any existing socket.
	if err := d.Start(signalCtx); err != nil {
		return err
	}

	ipcServer, err := ipc.NewServer(signalCtx, cfg.SocketPath(), d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	logger.Info("checklist daemon ready",
		logging.String(logging.FieldEventType, "daemon_ready"),
		logging.String("socket", cfg.SocketPath()),
		logging.String("api", d.APIAddress()),
		logging.String("log", logPath),
	)

	<-signalCtx.Done()
	logger.Info("checklist daemon shutting down")
	return nil
}

func logPreflight(logger *slog.Logger, results []preflight.Result) {
	for _, r := range results {
		if r.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
			)
			continue
		}
		logging.ErrorWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldErrorHint, "fix the path or address in config.toml and restart"),
		)
	}
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, logging.DaemonLogFile)
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
