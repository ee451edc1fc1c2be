package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"checklist/internal/api"
	"checklist/internal/config"
	"checklist/internal/logging"
	"checklist/internal/todos"
)

// Daemon owns the todo store and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *todos.Store
	todos  *api.TodoService
	api    *apiServer
	runID  string

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	startedAt time.Time
	ctx       context.Context
	cancel    context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running    bool
	PID        int
	RunID      string
	StartedAt  time.Time
	DBPath     string
	LockPath   string
	SocketPath string
	APIAddress string
	Stats      api.TodoStats
	StatsError string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *todos.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("daemon requires config and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		todos:    api.NewTodoService(store, logger),
		runID:    uuid.NewString(),
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}
	apiSrv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = apiSrv
	return d, nil
}

// Start acquires the daemon lock and starts the HTTP API when configured.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another checklist daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.api.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start api server: %w", err)
	}

	d.startedAt = time.Now().UTC()
	d.running.Store(true)
	d.logger.Info("checklist daemon started",
		logging.String("lock", d.lockPath),
		logging.String("db", d.store.Path()),
		logging.String("run_id", d.runID),
		logging.String(logging.FieldEventType, "daemon_started"),
	)
	return nil
}

// Stop shuts down the HTTP API and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "daemon_lock_release_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "next daemon start may report another instance"),
			logging.String(logging.FieldErrorHint, "remove "+d.lockPath+" if no daemon is running"),
		)
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("checklist daemon stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Todos returns the todo service backing both transports.
func (d *Daemon) Todos() *api.TodoService {
	return d.todos
}

// APIAddress returns the bound HTTP API address, or "" when the API is disabled or stopped.
func (d *Daemon) APIAddress() string {
	return d.api.address()
}

// DatabaseHealth returns detailed database diagnostics.
func (d *Daemon) DatabaseHealth(ctx context.Context) (todos.DatabaseHealth, error) {
	if d.store == nil {
		return todos.DatabaseHealth{}, errors.New("todo store unavailable")
	}
	return d.store.CheckHealth(ctx)
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:    d.running.Load(),
		PID:        os.Getpid(),
		RunID:      d.runID,
		StartedAt:  d.startedAt,
		DBPath:     d.store.Path(),
		LockPath:   d.lockPath,
		SocketPath: d.cfg.SocketPath(),
		APIAddress: d.APIAddress(),
	}
	stats, err := d.todos.Stats(ctx)
	if err != nil {
		status.StatsError = err.Error()
	} else {
		status.Stats = stats
	}
	return status
}

// DTO converts the status into its transport representation.
func (s Status) DTO() api.DaemonStatus {
	dto := api.DaemonStatus{
		Running:    s.Running,
		PID:        s.PID,
		RunID:      s.RunID,
		DBPath:     s.DBPath,
		LockPath:   s.LockPath,
		SocketPath: s.SocketPath,
		APIAddress: s.APIAddress,
		Todos:      s.Stats,
		StatsError: s.StatsError,
	}
	if !s.StartedAt.IsZero() {
		dto.StartedAt = s.StartedAt.Format(time.RFC3339)
	}
	return dto
}
