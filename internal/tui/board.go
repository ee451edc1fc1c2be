package tui

import "checklist/internal/api"

// Board mirrors the daemon's todo list in id order.
type Board struct {
	todos []api.Todo
}

// Todos returns the current rows.
func (b *Board) Todos() []api.Todo {
	return b.todos
}

// Len returns the number of rows.
func (b *Board) Len() int {
	return len(b.todos)
}

// At returns the row at index i.
func (b *Board) At(i int) (api.Todo, bool) {
	if i < 0 || i >= len(b.todos) {
		return api.Todo{}, false
	}
	return b.todos[i], true
}

// Replace swaps in a full list returned by the daemon.
func (b *Board) Replace(list []api.Todo) {
	b.todos = append([]api.Todo(nil), list...)
}

// Add appends a todo returned by a successful create. A row that is already
// present (a reload raced the create) is replaced instead.
func (b *Board) Add(todo api.Todo) {
	if b.Apply(todo) {
		return
	}
	b.todos = append(b.todos, todo)
}

// Apply replaces the row with the same id. It reports whether a row matched.
func (b *Board) Apply(todo api.Todo) bool {
	for i := range b.todos {
		if b.todos[i].ID == todo.ID {
			b.todos[i] = todo
			return true
		}
	}
	return false
}

// Remove drops the row with id. It reports whether a row matched.
func (b *Board) Remove(id int64) bool {
	for i := range b.todos {
		if b.todos[i].ID == id {
			b.todos = append(b.todos[:i], b.todos[i+1:]...)
			return true
		}
	}
	return false
}

// Progress returns the completed and total counts.
func (b *Board) Progress() (completed, total int) {
	for _, todo := range b.todos {
		if todo.Completed {
			completed++
		}
	}
	return completed, len(b.todos)
}
