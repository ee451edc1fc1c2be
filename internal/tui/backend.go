package tui

import (
	"context"

	"checklist/internal/api"
)

// Backend is the remote todo service. *ipc.Client satisfies it.
type Backend interface {
	GetTodos(ctx context.Context) ([]api.Todo, error)
	CreateTodo(ctx context.Context, title string) (*api.Todo, error)
	UpdateTodoCompletion(ctx context.Context, id int64, completed bool) (*api.Todo, error)
	DeleteTodo(ctx context.Context, id int64) error
}
