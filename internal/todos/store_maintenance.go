package todos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Stats returns completion totals across all todos.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)
	var stats Stats
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1), COALESCE(SUM(completed), 0) FROM todos`)
	if err := row.Scan(&stats.Total, &stats.Completed); err != nil {
		return Stats{}, fmt.Errorf("todo stats: %w", err)
	}
	stats.Pending = stats.Total - stats.Completed
	return stats, nil
}

// CheckHealth returns diagnostic information about the todo database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	ctx = ensureContext(ctx)
	health := DatabaseHealth{
		DBPath: s.path,
	}

	if s.path == "" {
		return health, errors.New("todo database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			health.DatabaseExists = false
			return health, nil
		}
		return health, fmt.Errorf("stat todo database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("todo database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, errors.New("todo database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping todo database: %w", err)
	}
	health.DatabaseReadable = true

	if version, ok, err := storedSchemaVersion(connCtx, s.db); err == nil && ok {
		health.SchemaVersion = version
	}

	var tableName string
	row := s.db.QueryRowContext(connCtx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'todos'")
	if err := row.Scan(&tableName); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			health.Error = err.Error()
			return health, fmt.Errorf("query table info: %w", err)
		}
	} else {
		health.TableExists = true
	}

	if health.TableExists {
		columns, err := s.tableColumns(connCtx)
		if err != nil {
			health.Error = err.Error()
			return health, err
		}
		health.ColumnsPresent = columns

		health.MissingColumns = missingColumns(columns)

		row = s.db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM todos")
		if err := row.Scan(&health.TotalTodos); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("count todos: %w", err)
		}
	}

	row = s.db.QueryRowContext(connCtx, "PRAGMA integrity_check")
	var integrityResult string
	if err := row.Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")

	return health, nil
}

func (s *Store) tableColumns(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "PRAGMA table_info(todos)")
	if err != nil {
		return nil, fmt.Errorf("table info: %w", err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			cid     int
			name    string
			typeStr string
			notNull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typeStr, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan table info: %w", err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table info: %w", err)
	}
	return columns, nil
}
