package daemonrun

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"checklist/internal/ipc"
	"checklist/internal/logging"
	"checklist/internal/services"
	"checklist/internal/testsupport"
)

func TestEnsureCurrentLogPointer(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "checklist-1.log")
	second := filepath.Join(dir, "checklist-2.log")
	for _, p := range []string{first, second} {
		if err := os.WriteFile(p, []byte(filepath.Base(p)), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := ensureCurrentLogPointer(dir, first); err != nil {
		t.Fatalf("first pointer: %v", err)
	}
	if err := ensureCurrentLogPointer(dir, second); err != nil {
		t.Fatalf("second pointer: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, logging.DaemonLogFile))
	if err != nil {
		t.Fatalf("read pointer: %v", err)
	}
	if string(data) != "checklist-2.log" {
		t.Fatalf("pointer should follow the latest log, got %q", data)
	}
}

func TestWritePIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checklist.pid")
	if err := writePIDFile(path); err != nil {
		t.Fatalf("writePIDFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid != os.Getpid() {
		t.Fatalf("unexpected pid file contents %q", data)
	}
}

func TestRunServesUntilCanceled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Logging.Format = "json"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, cfg, Options{})
	}()

	var client *ipc.Client
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		c, err := ipc.Dial(cfg.SocketPath())
		if err == nil {
			client = c
			break
		}
		select {
		case err := <-done:
			t.Fatalf("Run exited early: %v", err)
		case <-time.After(50 * time.Millisecond):
		}
	}
	if client == nil {
		cancel()
		t.Fatal("daemon socket never became available")
	}

	callCtx, callCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer callCancel()
	todo, err := client.CreateTodo(callCtx, "from run")
	if err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}
	if _, err := client.UpdateTodoCompletion(callCtx, todo.ID+100, true); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found across the socket, got %v", err)
	}
	if _, err := os.Stat(cfg.PIDPath()); err != nil {
		t.Fatalf("expected pid file while running: %v", err)
	}
	client.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if _, err := os.Stat(cfg.PIDPath()); !os.IsNotExist(err) {
		t.Fatalf("expected pid file removed, got %v", err)
	}
	if _, err := os.Stat(cfg.SocketPath()); !os.IsNotExist(err) {
		t.Fatalf("expected socket removed, got %v", err)
	}
	if _, err := os.Lstat(filepath.Join(cfg.Paths.LogDir, logging.DaemonLogFile)); err != nil {
		t.Fatalf("expected current log pointer: %v", err)
	}
}
