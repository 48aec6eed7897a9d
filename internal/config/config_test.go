package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"almoner/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("DONOR_API_URL", "")
	t.Setenv("ALMONER_CONFIG", "")

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

	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Fatalf("unexpected base url: %q", cfg.API.BaseURL)
	}
	if cfg.API.ListLimit != 100 || cfg.API.SearchLimit != 50 {
		t.Fatalf("unexpected limits: %d/%d", cfg.API.ListLimit, cfg.API.SearchLimit)
	}
	wantLogDir := filepath.Join(tempHome, ".local", "share", "almoner", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogDir)
	}
	if !cfg.Journal.Enabled {
		t.Fatal("expected journal enabled by default")
	}
	if cfg.Journal.Path != filepath.Join(tempHome, ".local", "share", "almoner", "review.db") {
		t.Fatalf("unexpected journal path: %q", cfg.Journal.Path)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %q/%q", cfg.Logging.Format, cfg.Logging.Level)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if _, err := os.Stat(cfg.Paths.LogDir); err != nil {
		t.Fatalf("log dir not created: %v", err)
	}
}

func TestLoadReadsFileAndEnvOverride(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("ALMONER_CONFIG", "")

	path := filepath.Join(t.TempDir(), "config.toml")
	contents := strings.Join([]string{
		"[api]",
		`base_url = "https://crm.example.org/"`,
		"list_limit = 25",
		"[operator]",
		`email = "ops@example.org"`,
		`role = "Staff"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("DONOR_API_URL", "")
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.API.BaseURL != "https://crm.example.org" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.API.BaseURL)
	}
	if cfg.API.ListLimit != 25 {
		t.Fatalf("unexpected list limit: %d", cfg.API.ListLimit)
	}
	if cfg.Operator.Role != "staff" {
		t.Fatalf("expected role lowercased, got %q", cfg.Operator.Role)
	}

	t.Setenv("DONOR_API_URL", "http://10.0.0.5:9000")
	cfg, _, _, err = config.Load(path)
	if err != nil {
		t.Fatalf("Load with env override: %v", err)
	}
	if cfg.API.BaseURL != "http://10.0.0.5:9000" {
		t.Fatalf("expected env override, got %q", cfg.API.BaseURL)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("DONOR_API_URL", "")

	cases := []struct {
		name     string
		contents string
		want     string
	}{
		{"bad url", "[api]\nbase_url = \"not a url\"", "api.base_url"},
		{"bad role", "[operator]\nrole = \"wizard\"", "operator.role"},
		{"bad format", "[logging]\nformat = \"xml\"", "logging.format"},
		{"bad level", "[logging]\nlevel = \"loud\"", "logging.level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.contents), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q error, got %v", tc.want, err)
			}
		})
	}
}
