package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"checklist/internal/api"
	"checklist/internal/daemon"
	"checklist/internal/logging"
	"checklist/internal/services"
)

// Server exposes the todo operations via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "ipc")

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	rpcServer := rpc.NewServer()
	svc := &service{daemon: d, todos: d.Todos(), logger: logger, ctx: serverCtx}
	if err := rpcServer.RegisterName(serviceName, svc); err != nil {
		cancel()
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
		conns:     make(map[net.Conn]struct{}),
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				if errors.Is(err, net.ErrClosed) {
					return
				}
				logging.WarnWithContext(s.logger, "accept failed", "ipc_accept_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart the daemon if needed"))
				continue
			}
			s.track(conn, true)
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				defer s.track(c, false)
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

func (s *Server) track(conn net.Conn, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		s.conns[conn] = struct{}{}
		return
	}
	delete(s.conns, conn)
}

// Close stops the server, drops open client connections and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.mu.Lock()
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		logging.WarnWithContext(s.logger, "failed to remove socket", "ipc_socket_cleanup_failed",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually or rerun checklist stop"))
	}
}

type service struct {
	daemon *daemon.Daemon
	todos  *api.TodoService
	logger *slog.Logger
	ctx    context.Context
}

// begin derives a per-call context carrying a fresh request id and the
// operation name, and returns a func that logs the call outcome.
func (s *service) begin(operation string) (context.Context, func(error) error) {
	ctx := services.WithRequestID(s.ctx, uuid.NewString())
	ctx = services.WithOperation(ctx, operation)
	started := time.Now()
	return ctx, func(err error) error {
		logger := logging.WithContext(ctx, s.logger)
		if err != nil {
			logger.Debug("rpc call failed",
				logging.Duration("elapsed", time.Since(started)),
				logging.String("kind", services.Kind(err)),
				logging.Error(err),
			)
			return encodeError(err)
		}
		logger.Debug("rpc call", logging.Duration("elapsed", time.Since(started)))
		return nil
	}
}

func (s *service) CreateTodo(params json.RawMessage, resp *CreateTodoResponse) error {
	ctx, finish := s.begin(api.OpCreateTodo)
	in, err := api.DecodeCreateTodo(params)
	if err != nil {
		return finish(err)
	}
	todo, err := s.todos.CreateTodo(ctx, in)
	if err != nil {
		return finish(err)
	}
	resp.Todo = todo
	return finish(nil)
}

func (s *service) GetTodos(params json.RawMessage, resp *GetTodosResponse) error {
	ctx, finish := s.begin(api.OpGetTodos)
	if err := api.ValidateGetTodos(params); err != nil {
		return finish(err)
	}
	list, err := s.todos.GetTodos(ctx)
	if err != nil {
		return finish(err)
	}
	resp.Todos = list
	return finish(nil)
}

func (s *service) UpdateTodoCompletion(params json.RawMessage, resp *UpdateTodoCompletionResponse) error {
	ctx, finish := s.begin(api.OpUpdateTodoCompletion)
	in, err := api.DecodeUpdateTodoCompletion(params)
	if err != nil {
		return finish(err)
	}
	todo, err := s.todos.UpdateTodoCompletion(ctx, in)
	if err != nil {
		return finish(err)
	}
	resp.Todo = todo
	return finish(nil)
}

func (s *service) DeleteTodo(params json.RawMessage, _ *DeleteTodoResponse) error {
	ctx, finish := s.begin(api.OpDeleteTodo)
	in, err := api.DecodeDeleteTodo(params)
	if err != nil {
		return finish(err)
	}
	return finish(s.todos.DeleteTodo(ctx, in))
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	*resp = s.daemon.Status(s.ctx).DTO()
	return nil
}

func (s *service) DatabaseHealth(_ DatabaseHealthRequest, resp *DatabaseHealthResponse) error {
	health, err := s.daemon.DatabaseHealth(s.ctx)
	if err != nil && health.Error == "" {
		return err
	}
	resp.DBPath = health.DBPath
	resp.DatabaseExists = health.DatabaseExists
	resp.DatabaseReadable = health.DatabaseReadable
	resp.SchemaVersion = health.SchemaVersion
	resp.TableExists = health.TableExists
	resp.ColumnsPresent = append(resp.ColumnsPresent, health.ColumnsPresent...)
	resp.MissingColumns = append(resp.MissingColumns, health.MissingColumns...)
	resp.IntegrityCheck = health.IntegrityCheck
	resp.TotalTodos = health.TotalTodos
	resp.Error = health.Error
	return err
}
