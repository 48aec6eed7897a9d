package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath, "")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, env.cfg.API.BaseURL)
	requireContains(t, out, "staff@example.org")
	requireContains(t, out, "Journal:")
}

func TestConfigInitWritesSample(t *testing.T) {
	setupCLITestEnv(t)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "", "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration to "+target)

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	requireContains(t, string(data), "base_url")
	requireContains(t, string(data), "[journal]")

	// A second init without --overwrite must refuse.
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, "", ""); err == nil {
		t.Fatal("expected error when config already exists")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, "", ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	env := setupCLITestEnv(t)
	_ = env

	out, _, err := runCLI(t, []string{"config", "validate"}, "", "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestJournalListEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"journal", "list"}, env.configPath, "")
	if err != nil {
		t.Fatalf("journal list: %v", err)
	}
	requireContains(t, out, "No review decisions recorded")
}

func TestJournalListDisabled(t *testing.T) {
	env := setupCLITestEnv(t)

	env.cfg.Journal.Enabled = false
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"journal", "list"}, env.configPath, "")
	if err != nil {
		t.Fatalf("journal list: %v", err)
	}
	requireContains(t, out, "Review journal is disabled")
}
