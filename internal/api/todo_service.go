package api

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"checklist/internal/logging"
	"checklist/internal/services"
	"checklist/internal/todos"
)

const serviceComponent = "todo-service"

// TodoStore abstracts the persistence operations the service needs.
type TodoStore interface {
	Create(ctx context.Context, title string) (*todos.Todo, error)
	List(ctx context.Context) ([]*todos.Todo, error)
	UpdateCompletion(ctx context.Context, id int64, completed bool) (*todos.Todo, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Stats(ctx context.Context) (todos.Stats, error)
}

// TodoService exposes the todo operations returning API DTOs.
type TodoService struct {
	store  TodoStore
	logger *slog.Logger
}

// NewTodoService constructs a TodoService around the provided store.
func NewTodoService(store TodoStore, logger *slog.Logger) *TodoService {
	if store == nil {
		return nil
	}
	return &TodoService{
		store:  store,
		logger: logging.NewComponentLogger(logger, serviceComponent),
	}
}

// CreateTodo validates the input, stores a new todo and returns the persisted row.
func (s *TodoService) CreateTodo(ctx context.Context, in CreateTodoInput) (Todo, error) {
	if err := validateValue(OpCreateTodo, in); err != nil {
		return Todo{}, err
	}
	// The schema pattern only knows ASCII whitespace.
	title := NormalizeTitle(in.Title)
	if strings.TrimSpace(title) == "" {
		return Todo{}, &ValidationError{Operation: OpCreateTodo, Path: "title", Message: "title must not be blank"}
	}
	todo, err := s.store.Create(ctx, title)
	if err != nil {
		logging.ErrorWithContext(logging.WithContext(ctx, s.logger), "todo create failed", "todo_create_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the database file is writable"),
		)
		return Todo{}, services.Wrap(services.ErrStorage, serviceComponent, OpCreateTodo, "insert todo", err)
	}
	logging.WithContext(services.WithTodoID(ctx, todo.ID), s.logger).Info("todo created",
		logging.String(logging.FieldEventType, "todo_created"),
	)
	return FromTodo(todo), nil
}

// GetTodos returns every todo ordered by id; the slice is empty, not nil, when there are none.
func (s *TodoService) GetTodos(ctx context.Context) ([]Todo, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		logging.ErrorWithContext(logging.WithContext(ctx, s.logger), "todo list failed", "todo_list_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run 'checklist db health' to inspect the database"),
		)
		return nil, services.Wrap(services.ErrStorage, serviceComponent, OpGetTodos, "list todos", err)
	}
	return FromTodos(list), nil
}

// UpdateTodoCompletion sets the completed flag of an existing todo and returns the stored row.
func (s *TodoService) UpdateTodoCompletion(ctx context.Context, in UpdateTodoCompletionInput) (Todo, error) {
	if err := validateValue(OpUpdateTodoCompletion, in); err != nil {
		return Todo{}, err
	}
	ctx = services.WithTodoID(ctx, in.ID)
	todo, err := s.store.UpdateCompletion(ctx, in.ID, in.Completed)
	if err != nil {
		var notFound *todos.NotFoundError
		if errors.As(err, &notFound) {
			logging.WithContext(ctx, s.logger).Debug("completion update for missing todo",
				logging.String(logging.FieldEventType, "todo_not_found"),
			)
			return Todo{}, err
		}
		logging.ErrorWithContext(logging.WithContext(ctx, s.logger), "todo completion update failed", "todo_update_failed",
			logging.Error(err),
			logging.Completed(in.Completed),
			logging.String(logging.FieldErrorHint, "check that the database file is writable"),
		)
		return Todo{}, services.Wrap(services.ErrStorage, serviceComponent, OpUpdateTodoCompletion, "update completion", err)
	}
	logging.WithContext(ctx, s.logger).Info("todo completion updated",
		logging.String(logging.FieldEventType, "todo_completion_updated"),
		logging.Completed(todo.Completed),
	)
	return FromTodo(todo), nil
}

// DeleteTodo removes a todo. Deleting an id that does not exist succeeds.
func (s *TodoService) DeleteTodo(ctx context.Context, in DeleteTodoInput) error {
	if err := validateValue(OpDeleteTodo, in); err != nil {
		return err
	}
	ctx = services.WithTodoID(ctx, in.ID)
	removed, err := s.store.Delete(ctx, in.ID)
	if err != nil {
		logging.ErrorWithContext(logging.WithContext(ctx, s.logger), "todo delete failed", "todo_delete_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the database file is writable"),
		)
		return services.Wrap(services.ErrStorage, serviceComponent, OpDeleteTodo, "delete todo", err)
	}
	logging.WithContext(ctx, s.logger).Info("todo deleted",
		logging.String(logging.FieldEventType, "todo_deleted"),
		logging.Bool("removed", removed),
	)
	return nil
}

// Stats returns completion totals.
func (s *TodoService) Stats(ctx context.Context) (TodoStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "todo stats unavailable", "todo_stats_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "status output omits todo totals"),
		)
		return TodoStats{}, services.Wrap(services.ErrStorage, serviceComponent, "stats", "count todos", err)
	}
	return FromStats(stats), nil
}

// NormalizeTitle returns title in Unicode normalization form C.
func NormalizeTitle(title string) string {
	return norm.NFC.String(title)
}
