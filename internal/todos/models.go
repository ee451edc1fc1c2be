package todos

import "time"

// Todo is a single persisted task.
type Todo struct {
	ID        int64
	Title     string
	Completed bool
	CreatedAt time.Time
}

// Stats summarises completion across all todos.
type Stats struct {
	Total     int
	Completed int
	Pending   int
}

// DatabaseHealth captures diagnostic details about the todo database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    int
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalTodos       int
	Error            string
}
