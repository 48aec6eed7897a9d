package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewConsoleFormatsAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.With("donor_id", 42).Info("saved donor", "name", "Jane Doe")

	out := buf.String()
	for _, want := range []string{"INFO", "saved donor", "donor_id=42", `name="Jane Doe"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
}

func TestNewHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Fatal("info line should be suppressed at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Fatal("warn line missing")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewTeesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "almoner.log")
	var buf bytes.Buffer
	logger, err := New(Options{Format: "json", Writer: &buf, Tee: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("persisted")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "persisted") {
		t.Fatalf("log file missing entry: %q", string(data))
	}
	if !strings.Contains(buf.String(), "persisted") {
		t.Fatal("console writer missing entry")
	}
}
