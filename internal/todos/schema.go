package todos

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is stored in schema_version. There are no migrations: a
// database written by another version has to be cleared.
const schemaVersion = 1

var todoTableColumns = []string{"id", "title", "completed", "created_at"}

// ErrSchemaMismatch means the database was created with a different schema version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// storedSchemaVersion reads schema_version. ok is false for a fresh database.
func storedSchemaVersion(ctx context.Context, q queryer) (version int, ok bool, err error) {
	err = q.QueryRowContext(ctx, `SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	switch {
	case err == nil:
		return version, true, nil
	case errors.Is(err, sql.ErrNoRows):
		return 0, false, nil
	default:
		var exists int
		if lookupErr := q.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'`,
		).Scan(&exists); lookupErr == nil && exists == 0 {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
}

// initSchema creates the tables on first open and otherwise checks the
// recorded version. The transaction takes the write lock up front, so two
// processes opening a new file cannot both create it.
func (s *Store) initSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	version, ok, err := storedSchemaVersion(ctx, tx)
	if err != nil {
		return err
	}
	if ok {
		if version != schemaVersion {
			return fmt.Errorf("%w: database has version %d, expected %d (delete %s to start over)",
				ErrSchemaMismatch, version, schemaVersion, s.path)
		}
		return nil
	}

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

// missingColumns returns the todos columns absent from present.
func missingColumns(present []string) []string {
	seen := make(map[string]bool, len(present))
	for _, col := range present {
		seen[col] = true
	}
	var missing []string
	for _, col := range todoTableColumns {
		if !seen[col] {
			missing = append(missing, col)
		}
	}
	return missing
}
