package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return cfgPath
}

func TestLoad(t *testing.T) {
	content := `
server:
  listen_addr: ":9090"

database:
  path: "/tmp/outreach-test.db"

anthropic:
  model: "claude-sonnet-4-20250514"
  max_tokens: 2048
  temperature: 0.6
  call_delay: 2s

worker:
  enabled: true
  poll_interval: 10s

review:
  save_debounce: 500ms

events:
  - name: "Longevity Summit"
    date: "2026-10-12"
    location: "Austin, TX"

logging:
  level: "debug"
  format: "text"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %v, want :9090", cfg.Server.ListenAddr)
	}
	if cfg.Database.Path != "/tmp/outreach-test.db" {
		t.Errorf("Database.Path = %v", cfg.Database.Path)
	}
	if cfg.Anthropic.MaxTokens != 2048 {
		t.Errorf("MaxTokens = %v, want 2048", cfg.Anthropic.MaxTokens)
	}
	if cfg.Anthropic.CallDelay != 2*time.Second {
		t.Errorf("CallDelay = %v, want 2s", cfg.Anthropic.CallDelay)
	}
	if !cfg.Worker.Enabled {
		t.Error("Worker.Enabled = false, want true")
	}
	if cfg.Worker.PollInterval != 10*time.Second {
		t.Errorf("PollInterval = %v, want 10s", cfg.Worker.PollInterval)
	}
	if cfg.Review.SaveDebounce != 500*time.Millisecond {
		t.Errorf("SaveDebounce = %v, want 500ms", cfg.Review.SaveDebounce)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if len(cfg.Events) != 1 || cfg.Events[0].Name != "Longevity Summit" {
		t.Errorf("Events = %+v", cfg.Events)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %v, want :8080", cfg.Server.ListenAddr)
	}
	if cfg.Database.Path != "outreach.db" {
		t.Errorf("Database.Path = %v, want outreach.db", cfg.Database.Path)
	}
	if cfg.Worker.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v, want 5s", cfg.Worker.PollInterval)
	}
	if cfg.Review.SaveDebounce != time.Second {
		t.Errorf("SaveDebounce = %v, want 1s", cfg.Review.SaveDebounce)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestSecretsComeFromEnvironment(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test-anthropic")
	t.Setenv("HUNTER_API_KEY", "hunter-test")
	t.Setenv("OUTREACH_API_KEY", "server-test")

	cfg, err := Load(writeConfig(t, "{}"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Anthropic.APIKey != "sk-test-anthropic" {
		t.Errorf("Anthropic.APIKey = %v", cfg.Anthropic.APIKey)
	}
	if cfg.Hunter.APIKey != "hunter-test" {
		t.Errorf("Hunter.APIKey = %v", cfg.Hunter.APIKey)
	}
	if cfg.Server.APIKey != "server-test" {
		t.Errorf("Server.APIKey = %v", cfg.Server.APIKey)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load() with missing file succeeded, want error")
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad log format", "logging:\n  format: xml\n"},
		{"bad log level", "logging:\n  level: verbose\n"},
		{"temperature out of range", "anthropic:\n  temperature: 1.5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("Load() succeeded, want validation error")
			}
		})
	}
}
