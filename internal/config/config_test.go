package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Verify.MaxIterations != 5 {
		t.Errorf("expected default max_iterations 5, got %d", cfg.Verify.MaxIterations)
	}

	if cfg.Verify.Temperature != 0.0 {
		t.Errorf("expected default temperature 0, got %f", cfg.Verify.Temperature)
	}

	if cfg.Verify.MaxTokens != 4000 {
		t.Errorf("expected default max_tokens 4000, got %d", cfg.Verify.MaxTokens)
	}

	if cfg.Timeouts.Model != 60*time.Second {
		t.Errorf("expected model timeout 60s, got %v", cfg.Timeouts.Model)
	}

	if cfg.Timeouts.GitHub != 30*time.Second {
		t.Errorf("expected github timeout 30s, got %v", cfg.Timeouts.GitHub)
	}

	if cfg.TUI.RefreshRate != 100*time.Millisecond {
		t.Errorf("expected refresh rate 100ms, got %v", cfg.TUI.RefreshRate)
	}

	if cfg.AWS.UseBedrock {
		t.Error("expected aws.use_bedrock to default to false")
	}
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
anthropic:
  api_key: test-key
  model: claude-sonnet-4-20250514
aws:
  use_bedrock: true
  region: us-west-2
github:
  token: gh-test-token
verify:
  max_iterations: 8
  temperature: 0.2
  max_tokens: 2000
  rate_limit_per_minute: 10
timeouts:
  model: 90s
  github: 15s
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Anthropic.APIKey != "test-key" {
		t.Errorf("expected api_key 'test-key', got %q", cfg.Anthropic.APIKey)
	}

	if cfg.Anthropic.Model != "claude-sonnet-4-20250514" {
		t.Errorf("expected model set, got %q", cfg.Anthropic.Model)
	}

	if !cfg.AWS.UseBedrock || cfg.AWS.Region != "us-west-2" {
		t.Errorf("aws config = %+v", cfg.AWS)
	}

	if cfg.GitHub.Token != "gh-test-token" {
		t.Errorf("expected github token, got %q", cfg.GitHub.Token)
	}

	if cfg.Verify.MaxIterations != 8 {
		t.Errorf("expected max_iterations 8, got %d", cfg.Verify.MaxIterations)
	}

	if cfg.Verify.Temperature != 0.2 {
		t.Errorf("expected temperature 0.2, got %f", cfg.Verify.Temperature)
	}

	if cfg.Timeouts.Model != 90*time.Second {
		t.Errorf("expected model timeout 90s, got %v", cfg.Timeouts.Model)
	}

	if cfg.Timeouts.GitHub != 15*time.Second {
		t.Errorf("expected github timeout 15s, got %v", cfg.Timeouts.GitHub)
	}
}

func TestLoadFromPath_DefaultsFillGaps(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("anthropic:\n  api_key: only-key\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Verify.MaxIterations != 5 {
		t.Errorf("expected default max_iterations 5, got %d", cfg.Verify.MaxIterations)
	}
	if cfg.Verify.MaxTokens != 4000 {
		t.Errorf("expected default max_tokens 4000, got %d", cfg.Verify.MaxTokens)
	}
	if cfg.Timeouts.GitHub != 30*time.Second {
		t.Errorf("expected default github timeout 30s, got %v", cfg.Timeouts.GitHub)
	}
}

func TestExpandEnv(t *testing.T) {
	os.Setenv("TEST_VAR", "expanded-value")
	defer os.Unsetenv("TEST_VAR")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
anthropic:
  api_key: ${TEST_VAR}
github:
  token: ${TEST_VAR}
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Anthropic.APIKey != "expanded-value" {
		t.Errorf("expected expanded api_key, got %q", cfg.Anthropic.APIKey)
	}
	if cfg.GitHub.Token != "expanded-value" {
		t.Errorf("expected expanded token, got %q", cfg.GitHub.Token)
	}
}

func TestGetUserConfigDir_XDG(t *testing.T) {
	original := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", original)

	os.Setenv("XDG_CONFIG_HOME", "/custom/config")

	dir := getUserConfigDir()
	if dir != filepath.Join("/custom/config", "checkpoint") {
		t.Errorf("expected XDG path, got %q", dir)
	}
}

func TestSaveAndReload(t *testing.T) {
	original := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", original)

	os.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Anthropic.APIKey = "saved-key"
	cfg.Verify.MaxIterations = 7

	if err := Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFromPath(GetUserConfigPath())
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	if loaded.Anthropic.APIKey != "saved-key" {
		t.Errorf("api_key = %q, want saved-key", loaded.Anthropic.APIKey)
	}
	if loaded.Verify.MaxIterations != 7 {
		t.Errorf("max_iterations = %d, want 7", loaded.Verify.MaxIterations)
	}
}
