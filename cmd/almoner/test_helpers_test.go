package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"almoner/internal/config"
	"almoner/internal/testsupport"
)

type cliTestEnv struct {
	api        *testsupport.DonorAPI
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("DONOR_API_URL", "")

	api := testsupport.NewDonorAPI()
	server := testsupport.StartDonorAPI(t, api)

	cfg := testsupport.NewConfig(t,
		testsupport.WithBaseURL(server.URL),
		testsupport.WithOperator("staff@example.org", "Test Operator", "staff"),
	)

	configPath := filepath.Join(homeDir, ".config", "almoner", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		api:        api,
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
	}
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	flags := []string{}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[api]\nbase_url = %q\ntimeout_seconds = %d\nlist_limit = %d\nsearch_limit = %d\n\n"+
			"[operator]\nemail = %q\nname = %q\nrole = %q\n\n"+
			"[journal]\nenabled = %t\npath = %q\n\n"+
			"[paths]\nlog_dir = %q\n\n"+
			"[logging]\nformat = %q\nlevel = %q\n",
		cfg.API.BaseURL,
		cfg.API.TimeoutSeconds,
		cfg.API.ListLimit,
		cfg.API.SearchLimit,
		cfg.Operator.Email,
		cfg.Operator.Name,
		cfg.Operator.Role,
		cfg.Journal.Enabled,
		cfg.Journal.Path,
		cfg.Paths.LogDir,
		cfg.Logging.Format,
		cfg.Logging.Level,
	)
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

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}
