package ipc

import "checklist/internal/api"

// serviceName is the net/rpc receiver name; procedures are "Todos.<Method>".
const serviceName = "Todos"

// Todo mirrors the HTTP API todo DTO for internal IPC callers.
type Todo = api.Todo

// CreateTodoRequest is the params object of Todos.CreateTodo.
type CreateTodoRequest = api.CreateTodoInput

// CreateTodoResponse carries the persisted todo.
type CreateTodoResponse struct {
	Todo Todo `json:"todo"`
}

// GetTodosRequest takes no fields.
type GetTodosRequest struct{}

// GetTodosResponse contains every todo ordered by id.
type GetTodosResponse struct {
	Todos []Todo `json:"todos"`
}

// UpdateTodoCompletionRequest is the params object of Todos.UpdateTodoCompletion.
type UpdateTodoCompletionRequest = api.UpdateTodoCompletionInput

// UpdateTodoCompletionResponse carries the todo as stored after the update.
type UpdateTodoCompletionResponse struct {
	Todo Todo `json:"todo"`
}

// DeleteTodoRequest is the params object of Todos.DeleteTodo.
type DeleteTodoRequest = api.DeleteTodoInput

// DeleteTodoResponse is empty; deleting a missing id still succeeds.
type DeleteTodoResponse struct{}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents daemon status information.
type StatusResponse = api.DaemonStatus

// DatabaseHealthRequest fetches detailed database diagnostics.
type DatabaseHealthRequest struct{}

// DatabaseHealthResponse reports database health information.
type DatabaseHealthResponse struct {
	DBPath           string   `json:"db_path"`
	DatabaseExists   bool     `json:"database_exists"`
	DatabaseReadable bool     `json:"database_readable"`
	SchemaVersion    int      `json:"schema_version"`
	TableExists      bool     `json:"table_exists"`
	ColumnsPresent   []string `json:"columns_present"`
	MissingColumns   []string `json:"missing_columns"`
	IntegrityCheck   bool     `json:"integrity_check"`
	TotalTodos       int      `json:"total_todos"`
	Error            string   `json:"error"`
}
