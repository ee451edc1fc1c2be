package todos

import (
	"errors"
	"fmt"
	"time"
)

const todoColumns = "id, title, completed, created_at"

// createdAtLayout is fixed width so that text ordering in SQLite matches
// chronological ordering.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

func scanTodo(scanner interface{ Scan(dest ...any) error }) (*Todo, error) {
	var (
		id         int64
		title      string
		completed  int64
		createdRaw string
	)
	if err := scanner.Scan(&id, &title, &completed, &createdRaw); err != nil {
		return nil, err
	}
	created, err := parseTimeString(createdRaw)
	if err != nil {
		return nil, fmt.Errorf("todo %d: parse created_at %q: %w", id, createdRaw, err)
	}
	return &Todo{
		ID:        id,
		Title:     title,
		Completed: completed != 0,
		CreatedAt: created,
	}, nil
}

func formatTime(value time.Time) string {
	return value.UTC().Format(createdAtLayout)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
