package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetup_JSONToWriterAndFile(t *testing.T) {
	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "logs", "sampletest.log")

	cleanup, err := Setup(Config{Level: "info", Format: "json", Output: &buf, File: file})
	if err != nil {
		t.Fatalf("Setup error: %v", err)
	}
	defer func() { _ = cleanup() }()

	L().Info("launcher.compile.start", "test", "sequential")
	L().Debug("hidden")

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("expected a single json record, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "launcher.compile.start" || rec["test"] != "sequential" {
		t.Fatalf("unexpected record: %v", rec)
	}

	b, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(b), "launcher.compile.start") {
		t.Fatalf("expected record copied to file, got %q", string(b))
	}
	if Path() != file {
		t.Fatalf("expected path %s, got %s", file, Path())
	}
}

func TestSetup_RejectsBadInput(t *testing.T) {
	if _, err := Setup(Config{Level: "verbose"}); err == nil {
		t.Fatalf("expected level error")
	}
	if _, err := Setup(Config{Format: "xml"}); err == nil {
		t.Fatalf("expected format error")
	}
}
