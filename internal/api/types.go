package api

import (
	"time"

	"checklist/internal/todos"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = time.RFC3339Nano

// Todo describes a todo in a transport-friendly format.
type Todo struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"created_at"`
}

// CreatedTime parses CreatedAt, returning the zero time when it is malformed.
func (t Todo) CreatedTime() time.Time {
	parsed, err := time.Parse(dateTimeFormat, t.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

// TodoStats summarises completion across all todos.
type TodoStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

// CreateTodoInput is the input of the createTodo operation.
type CreateTodoInput struct {
	Title string `json:"title"`
}

// UpdateTodoCompletionInput is the input of the updateTodoCompletion operation.
type UpdateTodoCompletionInput struct {
	ID        int64 `json:"id"`
	Completed bool  `json:"completed"`
}

// DeleteTodoInput is the input of the deleteTodo operation.
type DeleteTodoInput struct {
	ID int64 `json:"id"`
}

// FromTodo converts a stored todo into its transport representation.
func FromTodo(todo *todos.Todo) Todo {
	if todo == nil {
		return Todo{}
	}
	dto := Todo{
		ID:        todo.ID,
		Title:     todo.Title,
		Completed: todo.Completed,
	}
	if !todo.CreatedAt.IsZero() {
		dto.CreatedAt = todo.CreatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromTodos converts stored todos, preserving order. The result is never nil.
func FromTodos(list []*todos.Todo) []Todo {
	out := make([]Todo, 0, len(list))
	for _, todo := range list {
		if todo == nil {
			continue
		}
		out = append(out, FromTodo(todo))
	}
	return out
}

// FromStats converts store stats into the transport shape.
func FromStats(stats todos.Stats) TodoStats {
	return TodoStats{
		Total:     stats.Total,
		Completed: stats.Completed,
		Pending:   stats.Pending,
	}
}

// TodoListResponse wraps the getTodos result.
type TodoListResponse struct {
	Todos []Todo `json:"todos"`
}

// TodoResponse wraps a single todo result.
type TodoResponse struct {
	Todo Todo `json:"todo"`
}

// ErrorResponse is the body of a failed HTTP request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Path  string `json:"path,omitempty"`
}

// DaemonStatus aggregates runtime information about the daemon.
type DaemonStatus struct {
	Running    bool      `json:"running"`
	PID        int       `json:"pid"`
	RunID      string    `json:"run_id,omitempty"`
	StartedAt  string    `json:"started_at,omitempty"`
	DBPath     string    `json:"db_path"`
	LockPath   string    `json:"lock_path"`
	SocketPath string    `json:"socket_path"`
	APIAddress string    `json:"api_address,omitempty"`
	Todos      TodoStats `json:"todos"`
	StatsError string    `json:"stats_error,omitempty"`
}
