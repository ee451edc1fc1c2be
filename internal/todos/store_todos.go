package todos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Create inserts a new, not yet completed todo and returns the stored row.
// created_at is clamped to the newest existing value so it never decreases
// with insertion order, even if the wall clock steps backwards.
func (s *Store) Create(ctx context.Context, title string) (*Todo, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.New("create todo: title is required")
	}
	timestamp := formatTime(time.Now())

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO todos (title, completed, created_at)
         VALUES (?, 0, MAX(?, COALESCE((SELECT MAX(created_at) FROM todos), '')))`,
		title,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	todo, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if todo == nil {
		return nil, fmt.Errorf("read back todo %d: row vanished after insert", id)
	}
	return todo, nil
}

// List returns every todo ordered by id. The result is empty, never nil, when
// the table has no rows.
func (s *Store) List(ctx context.Context) ([]*Todo, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT `+todoColumns+` FROM todos ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]*Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate todos: %w", err)
	}
	return todos, nil
}

// GetByID fetches a todo by id. It returns nil, nil when no row matches.
func (s *Store) GetByID(ctx context.Context, id int64) (*Todo, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = ?`, id)
	todo, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get todo: %w", err)
	}
	return todo, nil
}

// UpdateCompletion sets the completed flag of a todo and returns the row as
// stored after the write. Title and created_at are never touched. A missing
// id yields *NotFoundError.
func (s *Store) UpdateCompletion(ctx context.Context, id int64, completed bool) (*Todo, error) {
	ctx = ensureContext(ctx)
	var updated *Todo
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		res, err := tx.ExecContext(ctx, `UPDATE todos SET completed = ? WHERE id = ?`, boolToInt(completed), id)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return &NotFoundError{ID: id}
		}

		todo, err := scanTodo(tx.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = ?`, id))
		if err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		updated = todo
		return nil
	})
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update completion: %w", err)
	}
	return updated, nil
}

// Delete removes a todo. It reports whether a row was removed; deleting an id
// that does not exist is not an error.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete todo: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Clear removes all todos and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM todos`)
	if err != nil {
		return 0, fmt.Errorf("clear todos: %w", err)
	}
	return res.RowsAffected()
}
