package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reillywatson/doratracker/internal/github"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dora.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg != Default() {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
	if cfg.GitHub.APIURL != "https://api.github.com/" {
		t.Errorf("Expected public GitHub API URL, got %s", cfg.GitHub.APIURL)
	}
	if cfg.GitHub.APIURL != github.DefaultBaseURL {
		t.Errorf("Expected default API URL to match the client's %s, got %s", github.DefaultBaseURL, cfg.GitHub.APIURL)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
github:
  api_url: https://ghe.example.com/api/v3/
logging:
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.GitHub.APIURL != "https://ghe.example.com/api/v3/" {
		t.Errorf("Expected GHE API URL, got %s", cfg.GitHub.APIURL)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected json format, got %s", cfg.Logging.Format)
	}
	// Unset keys keep their defaults
	if cfg.Logging.Level != "warn" {
		t.Errorf("Expected default level warn, got %s", cfg.Logging.Level)
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg != Default() {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("Expected error for missing file")
	}
	if _, err := Load(writeConfig(t, "github: [unterminated")); err == nil {
		t.Errorf("Expected error for invalid YAML")
	}
	if _, err := Load(writeConfig(t, "github:\n  token: secret\n")); err == nil {
		t.Errorf("Expected error for unknown field")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggingConfig{Level: "warn", Format: "json"}, &buf)

	logger.Infow("hidden")
	logger.Warnw("Error fetching commit timestamp", "repo", "org/app")
	logger.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected info message to be filtered at warn level, got %s", out)
	}
	if !strings.Contains(out, `"repo":"org/app"`) {
		t.Errorf("Expected structured repo field, got %s", out)
	}
	if !strings.Contains(out, `"timestamp"`) {
		t.Errorf("Expected timestamp key, got %s", out)
	}
}

func TestNewLogger_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggingConfig{Level: "loud"}, &buf)

	logger.Debugw("debug message")
	logger.Infow("info message")

	out := buf.String()
	if strings.Contains(out, "debug message") {
		t.Errorf("Expected debug to be filtered, got %s", out)
	}
	if !strings.Contains(out, "info message") {
		t.Errorf("Expected info message, got %s", out)
	}
}
