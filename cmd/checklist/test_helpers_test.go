package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"checklist/internal/config"
	"checklist/internal/daemon"
	"checklist/internal/ipc"
	"checklist/internal/logging"
	"checklist/internal/testsupport"
	"checklist/internal/todos"
)

type cliTestEnv struct {
	cfg        *config.Config
	store      *todos.Store
	daemon     *daemon.Daemon
	server     *ipc.Server
	socketPath string
	configPath string
}

// setupCLITestEnv writes a config file and, unless offline is set, runs the
// daemon and its JSON-RPC server in-process.
func setupCLITestEnv(t *testing.T, offline bool) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	env := &cliTestEnv{
		cfg:        cfg,
		socketPath: cfg.SocketPath(),
		configPath: configPath,
	}
	if offline {
		return env
	}

	env.store = testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	d, err := daemon.New(cfg, env.store, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Start(ctx); err != nil {
		cancel()
		t.Fatalf("daemon.Start: %v", err)
	}
	srv, err := ipc.NewServer(ctx, env.socketPath, d, logger)
	if err != nil {
		cancel()
		d.Close()
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	env.daemon = d
	env.server = srv
	t.Cleanup(func() {
		cancel()
		srv.Close()
		d.Close()
	})
	return env
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--socket", env.socketPath, "--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ndata_dir = %q\nlog_dir = %q\napi_bind = %q\napi_token = %q\n\n[logging]\nformat = \"json\"\nlevel = \"info\"\n\n[client]\ntimeout_seconds = %d\n",
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Paths.APIBind,
		cfg.Paths.APIToken,
		cfg.Client.TimeoutSeconds,
	)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
