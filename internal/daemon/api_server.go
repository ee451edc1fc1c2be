package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"checklist/internal/api"
	"checklist/internal/config"
	"checklist/internal/logging"
	"checklist/internal/services"
)

const maxRequestBody = 64 << 10

type apiServer struct {
	bind    string
	logger  *slog.Logger
	daemon  *Daemon
	todoSvc *api.TodoService

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:    bind,
		logger:  logger,
		daemon:  d,
		todoSvc: d.todos,
	}
	srv.server = &http.Server{
		Handler:           srv.routes(strings.TrimSpace(cfg.Paths.APIToken)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// routes wires the todo endpoints. The request id wraps the whole router so
// unmatched paths and methods carry X-Request-ID too.
func (s *apiServer) routes(token string) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusNotFound, api.ErrorResponse{Error: "route not found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, api.ErrorResponse{Error: "method not allowed"})
	})
	router.Use(authMiddleware(token))

	router.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	router.HandleFunc("/api/todos", s.handleListTodos).Methods(http.MethodGet)
	router.HandleFunc("/api/todos", s.handleCreateTodo).Methods(http.MethodPost)
	router.HandleFunc("/api/todos/{id}", s.handleUpdateTodo).Methods(http.MethodPatch)
	router.HandleFunc("/api/todos/{id}", s.handleDeleteTodo).Methods(http.MethodDelete)
	return requestIDMiddleware(router)
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	s.mu.Lock()
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
	s.mu.Unlock()
}

func (s *apiServer) address() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.daemon.Status(r.Context()).DTO())
}

func (s *apiServer) handleListTodos(w http.ResponseWriter, r *http.Request) {
	ctx := services.WithOperation(r.Context(), api.OpGetTodos)
	list, err := s.todoSvc.GetTodos(ctx)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.TodoListResponse{Todos: list})
}

func (s *apiServer) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	ctx := services.WithOperation(r.Context(), api.OpCreateTodo)
	body, err := readBody(w, r)
	if err != nil {
		s.writeServiceError(w, r, &api.ValidationError{Operation: api.OpCreateTodo, Message: err.Error()})
		return
	}
	in, err := api.DecodeCreateTodo(body)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	todo, err := s.todoSvc.CreateTodo(ctx, in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/todos/"+strconv.FormatInt(todo.ID, 10))
	s.writeJSON(w, http.StatusCreated, api.TodoResponse{Todo: todo})
}

func (s *apiServer) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	ctx := services.WithOperation(r.Context(), api.OpUpdateTodoCompletion)
	id, err := pathID(r, api.OpUpdateTodoCompletion)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		s.writeServiceError(w, r, &api.ValidationError{Operation: api.OpUpdateTodoCompletion, Message: err.Error()})
		return
	}
	merged, err := mergeID(body, id)
	if err != nil {
		s.writeServiceError(w, r, &api.ValidationError{Operation: api.OpUpdateTodoCompletion, Message: err.Error()})
		return
	}
	in, err := api.DecodeUpdateTodoCompletion(merged)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	todo, err := s.todoSvc.UpdateTodoCompletion(ctx, in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.TodoResponse{Todo: todo})
}

func (s *apiServer) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	ctx := services.WithOperation(r.Context(), api.OpDeleteTodo)
	id, err := pathID(r, api.OpDeleteTodo)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := s.todoSvc.DeleteTodo(ctx, api.DeleteTodoInput{ID: id}); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request, operation string) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &api.ValidationError{Operation: operation, Path: "id", Message: "must be an integer"}
	}
	return id, nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	return body, nil
}

// mergeID injects the path id into a JSON object body so the combined payload
// is validated against the operation schema in one pass.
func mergeID(body []byte, id int64) ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
		if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
			return nil, fmt.Errorf("malformed JSON: %v", err)
		}
		if fields == nil {
			fields = map[string]json.RawMessage{}
		}
	}
	fields["id"] = json.RawMessage(strconv.FormatInt(id, 10))
	return json.Marshal(fields)
}

func statusForError(err error) int {
	switch services.Kind(err) {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *apiServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	payload := api.ErrorResponse{Error: err.Error(), Kind: services.Kind(err)}
	var validation *api.ValidationError
	if errors.As(err, &validation) {
		payload.Path = validation.Path
	}
	if status >= http.StatusInternalServerError {
		// The service already logged the cause; keep the body generic.
		payload.Error = "internal error"
	}
	logging.WithContext(r.Context(), s.log()).Debug("api request failed",
		logging.Int("status", status),
		logging.String("kind", payload.Kind),
		logging.Error(err),
	)
	s.writeError(w, status, payload)
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, payload api.ErrorResponse) {
	s.writeJSON(w, status, payload)
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
