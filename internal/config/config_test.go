package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"checklist/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("CHECKLIST_API_TOKEN", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "checklist")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.LogDir != filepath.Join(wantData, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7488" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
	if cfg.ClientTimeout() != 5*time.Second {
		t.Fatalf("unexpected client timeout: %s", cfg.ClientTimeout())
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "checklist.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if cfg.SocketPath() != filepath.Join(wantData, "logs", "checklist.sock") {
		t.Fatalf("unexpected socket path: %q", cfg.SocketPath())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "checklist.toml")

	type payload struct {
		Paths struct {
			DataDir string `toml:"data_dir"`
			APIBind string `toml:"api_bind"`
		} `toml:"paths"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
		Client struct {
			TimeoutSeconds int `toml:"timeout_seconds"`
		} `toml:"client"`
	}
	custom := payload{}
	custom.Paths.DataDir = filepath.Join(tempDir, "data")
	custom.Paths.APIBind = ""
	custom.Logging.Format = "STYLED"
	custom.Logging.Level = "Debug"
	custom.Client.TimeoutSeconds = 12
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.DataDir != filepath.Join(tempDir, "data") {
		t.Fatalf("expected data dir from file, got %q", cfg.Paths.DataDir)
	}
	if cfg.APIEnabled() {
		t.Fatalf("expected empty api_bind to disable the HTTP API, got %q", cfg.Paths.APIBind)
	}
	if cfg.Logging.Format != "styled" {
		t.Fatalf("expected styled format, got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected debug level, got %q", cfg.Logging.Level)
	}
	if cfg.Client.TimeoutSeconds != 12 {
		t.Fatalf("expected timeout 12, got %d", cfg.Client.TimeoutSeconds)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "checklist.toml")
	if err := os.WriteFile(configPath, []byte("[paths]\nstaging_dir = \"/tmp\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestAPITokenFallsBackToEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "checklist.toml")
	if err := os.WriteFile(configPath, []byte("[paths]\napi_token = \"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CHECKLIST_API_TOKEN", " env-token ")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.APIToken != "env-token" {
		t.Fatalf("expected token from env, got %q", cfg.Paths.APIToken)
	}

	if err := os.WriteFile(configPath, []byte("[paths]\napi_token = \"file-token\"\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	cfg, _, _, err = config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.APIToken != "file-token" {
		t.Fatalf("expected file token to win, got %q", cfg.Paths.APIToken)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "CHECKLIST_API_TOKEN") {
		t.Fatalf("sample config missing token hint: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.DataDir, "checklist") {
		t.Fatalf("expected data dir to contain checklist, got %q", cfg.Paths.DataDir)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Client.TimeoutSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive client timeout")
	}

	cfg = config.Default()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown log level")
	}

	cfg = config.Default()
	cfg.Paths.APIBind = "not-a-bind"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for malformed api bind")
	}

	cfg = config.Default()
	cfg.Paths.DataDir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty data dir")
	}

	cfg = config.Default()
	cfg.Paths.LogDir = "/" + strings.Repeat("x", 120)
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for overlong socket path")
	}

	cfg = config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}
