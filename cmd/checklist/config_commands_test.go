package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"checklist/internal/testsupport"
)

func TestConfigInitShowValidate(t *testing.T) {
	env := setupCLITestEnv(t, true)

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, _, err := runCLI(t, env, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, env, "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
	if _, _, err := runCLI(t, env, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, env, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+env.configPath)
	requireContains(t, out, "Configuration valid")

	out, _, err = runCLI(t, env, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[paths]")
	requireContains(t, out, env.cfg.Paths.DataDir)
}

func TestConfigShowRedactsToken(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAPIToken("s3cret"))
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)
	env := &cliTestEnv{cfg: cfg, socketPath: cfg.SocketPath(), configPath: configPath}

	out, _, err := runCLI(t, env, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "s3cret") {
		t.Fatalf("token leaked in config show output:\n%s", out)
	}
	requireContains(t, out, redacted)
}

func TestInvalidConfigFailsBeforeCommand(t *testing.T) {
	env := setupCLITestEnv(t, true)
	if err := os.WriteFile(env.configPath, []byte("[paths]\nunknown_key = 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := runCLI(t, env, "list"); err == nil {
		t.Fatal("expected config error")
	}
}
