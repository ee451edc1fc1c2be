package testsupport

import (
	"context"
	"testing"

	"checklist/internal/config"
	"checklist/internal/todos"
)

// MustOpenStore opens a todos.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *todos.Store {
	t.Helper()

	store, err := todos.Open(cfg)
	if err != nil {
		t.Fatalf("todos.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewTodo creates a todo for tests using the provided store.
func NewTodo(t testing.TB, store *todos.Store, title string) *todos.Todo {
	t.Helper()

	todo, err := store.Create(context.Background(), title)
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return todo
}
