package todos_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"checklist/internal/services"
	"checklist/internal/testsupport"
	"checklist/internal/todos"
)

func TestCreatePersistsDefaults(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	before := time.Now().Add(-time.Second)
	todo, err := store.Create(ctx, "Buy milk")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if todo.ID <= 0 {
		t.Fatalf("expected positive id, got %d", todo.ID)
	}
	if todo.Title != "Buy milk" || todo.Completed {
		t.Fatalf("unexpected todo: %#v", todo)
	}
	if todo.CreatedAt.Before(before) || todo.CreatedAt.After(time.Now().Add(time.Second)) {
		t.Fatalf("created_at %s not close to now", todo.CreatedAt)
	}

	fetched, err := store.GetByID(ctx, todo.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || *fetched != *todo {
		t.Fatalf("expected stored row to match created todo, got %#v want %#v", fetched, todo)
	}
}

func TestCreateAssignsDistinctIncreasingIDs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	first := testsupport.NewTodo(t, store, "Buy milk")
	second := testsupport.NewTodo(t, store, "Buy milk")
	if first.ID == second.ID {
		t.Fatalf("expected distinct ids for identical titles, got %d twice", first.ID)
	}
	if second.ID <= first.ID {
		t.Fatalf("expected increasing ids, got %d then %d", first.ID, second.ID)
	}
	if second.CreatedAt.Before(first.CreatedAt) {
		t.Fatalf("created_at decreased: %s then %s", first.CreatedAt, second.CreatedAt)
	}
}

func TestCreateRejectsBlankTitle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	for _, title := range []string{"", "   "} {
		if _, err := store.Create(context.Background(), title); err == nil {
			t.Fatalf("expected error for title %q", title)
		}
	}
}

func TestCreatedAtNeverDecreases(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	// Seed a row stamped in the future so a new insert sees a later maximum.
	db, err := sql.Open("sqlite", store.Path())
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	defer db.Close()
	future := time.Now().Add(time.Hour).UTC().Format("2006-01-02T15:04:05.000000000Z")
	if _, err := db.Exec(`INSERT INTO todos (title, completed, created_at) VALUES ('future', 0, ?)`, future); err != nil {
		t.Fatalf("seed future row: %v", err)
	}

	todo, err := store.Create(ctx, "after")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if got := todo.CreatedAt.UTC().Format("2006-01-02T15:04:05.000000000Z"); got != future {
		t.Fatalf("expected created_at clamped to %s, got %s", future, got)
	}
}

func TestListEmptyIsNonNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	list, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if list == nil {
		t.Fatal("expected empty non-nil slice")
	}
	if len(list) != 0 {
		t.Fatalf("expected no todos, got %d", len(list))
	}
}

func TestListOrdersByID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	var created []*todos.Todo
	for i := 0; i < 5; i++ {
		created = append(created, testsupport.NewTodo(t, store, fmt.Sprintf("task %d", i)))
	}

	list, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != len(created) {
		t.Fatalf("expected %d todos, got %d", len(created), len(list))
	}
	for i := range list {
		if *list[i] != *created[i] {
			t.Fatalf("row %d mismatch: got %#v want %#v", i, list[i], created[i])
		}
	}
}

func TestUpdateCompletionRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	original := testsupport.NewTodo(t, store, "Write report")

	updated, err := store.UpdateCompletion(ctx, original.ID, true)
	if err != nil {
		t.Fatalf("UpdateCompletion failed: %v", err)
	}
	if !updated.Completed {
		t.Fatal("expected completed=true")
	}
	if updated.ID != original.ID || updated.Title != original.Title || !updated.CreatedAt.Equal(original.CreatedAt) {
		t.Fatalf("immutable fields changed: got %#v want %#v", updated, original)
	}

	again, err := store.UpdateCompletion(ctx, original.ID, true)
	if err != nil {
		t.Fatalf("idempotent UpdateCompletion failed: %v", err)
	}
	if *again != *updated {
		t.Fatalf("expected idempotent update, got %#v want %#v", again, updated)
	}

	reverted, err := store.UpdateCompletion(ctx, original.ID, false)
	if err != nil {
		t.Fatalf("UpdateCompletion(false) failed: %v", err)
	}
	if *reverted != *original {
		t.Fatalf("expected toggle back to original, got %#v want %#v", reverted, original)
	}
}

func TestUpdateCompletionMissingID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.NewTodo(t, store, "present")

	_, err := store.UpdateCompletion(ctx, 999, true)
	if err == nil {
		t.Fatal("expected not-found error")
	}
	var notFound *todos.NotFoundError
	if !errors.As(err, &notFound) || notFound.ID != 999 {
		t.Fatalf("expected NotFoundError for 999, got %v", err)
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected errors.Is ErrNotFound, got %v", err)
	}
	if !strings.Contains(strings.ToLower(err.Error()), "todo with id 999 not found") {
		t.Fatalf("unexpected message %q", err.Error())
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 1 || stats.Completed != 0 {
		t.Fatalf("expected storage unchanged, got %+v", stats)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	keep := testsupport.NewTodo(t, store, "keep")
	drop := testsupport.NewTodo(t, store, "drop")

	removed, err := store.Delete(ctx, drop.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !removed {
		t.Fatal("expected first delete to remove a row")
	}
	removed, err = store.Delete(ctx, drop.ID)
	if err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if removed {
		t.Fatal("expected second delete to be a no-op")
	}
	if _, err := store.Delete(ctx, 999); err != nil {
		t.Fatalf("Delete of missing id failed: %v", err)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != keep.ID {
		t.Fatalf("expected only %d to remain, got %#v", keep.ID, list)
	}
	if got, _ := store.GetByID(ctx, drop.ID); got != nil {
		t.Fatalf("expected deleted todo to be gone, got %#v", got)
	}
}

func TestClearAndStats(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	a := testsupport.NewTodo(t, store, "a")
	testsupport.NewTodo(t, store, "b")
	testsupport.NewTodo(t, store, "c")
	if _, err := store.UpdateCompletion(ctx, a.ID, true); err != nil {
		t.Fatalf("UpdateCompletion failed: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats != (todos.Stats{Total: 3, Completed: 1, Pending: 2}) {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	cleared, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if cleared != 3 {
		t.Fatalf("expected 3 cleared, got %d", cleared)
	}
	stats, err = store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats != (todos.Stats{}) {
		t.Fatalf("expected zero stats after clear, got %+v", stats)
	}
}

func TestConcurrentCreatesAreAllPersisted(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	ids := make(chan int64, workers)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			todo, err := store.Create(ctx, fmt.Sprintf("parallel %d", n))
			if err != nil {
				errs <- err
				return
			}
			ids <- todo.ID
		}(i)
	}
	wg.Wait()
	close(ids)
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent Create failed: %v", err)
	}

	seen := make(map[int64]struct{})
	for id := range ids {
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = struct{}{}
	}
	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != workers {
		t.Fatalf("expected %d todos, got %d", workers, len(list))
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := todos.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	created := testsupport.NewTodo(t, store, "durable")
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	fetched, err := reopened.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || *fetched != *created {
		t.Fatalf("expected durable row, got %#v", fetched)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	db, err := sql.Open("sqlite", store.Path())
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec(`UPDATE schema_version SET version = 99`); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	_, err = todos.OpenPath(store.Path())
	if !errors.Is(err, todos.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestCheckHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.NewTodo(t, store, "one")

	health, err := store.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if health.DBPath != filepath.Join(cfg.Paths.DataDir, "checklist.db") {
		t.Fatalf("unexpected db path %q", health.DBPath)
	}
	if !health.DatabaseExists || !health.DatabaseReadable || !health.TableExists || !health.IntegrityCheck {
		t.Fatalf("expected healthy database, got %+v", health)
	}
	if len(health.MissingColumns) != 0 {
		t.Fatalf("unexpected missing columns: %v", health.MissingColumns)
	}
	if health.TotalTodos != 1 {
		t.Fatalf("expected 1 todo, got %d", health.TotalTodos)
	}
	if health.SchemaVersion != 1 {
		t.Fatalf("expected stored schema version 1, got %d", health.SchemaVersion)
	}
}

func TestReadsRejectUnparseableCreatedAt(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	todo := testsupport.NewTodo(t, store, "stamped")

	db, err := sql.Open("sqlite", store.Path())
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec(`UPDATE todos SET created_at = 'yesterday' WHERE id = ?`, todo.ID); err != nil {
		t.Fatalf("corrupt created_at: %v", err)
	}
	_ = db.Close()

	if got, err := store.GetByID(ctx, todo.ID); err == nil || !strings.Contains(err.Error(), "created_at") {
		t.Fatalf("expected created_at error from GetByID, got %#v, %v", got, err)
	}
	if _, err := store.List(ctx); err == nil || !strings.Contains(err.Error(), "yesterday") {
		t.Fatalf("expected created_at error from List, got %v", err)
	}
	if _, err := store.UpdateCompletion(ctx, todo.ID, true); err == nil {
		t.Fatal("expected UpdateCompletion to surface the bad created_at")
	}
}
