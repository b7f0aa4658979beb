package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CarterFendley/pipelines/internal/infra/config"
)

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file %s: %v", path, err)
	}
}

func TestInit_CreatesConfigFiles(t *testing.T) {
	tmp := t.TempDir()

	written, err := NewInitializer(false).Init(tmp, "subdag")
	if err != nil {
		t.Fatalf("Init error: %v", err)
	}
	if len(written) != 3 {
		t.Fatalf("expected 3 files written, got %v", written)
	}

	cfgDir := filepath.Join(tmp, "config")
	assertFileExists(t, filepath.Join(cfgDir, "default.config.yaml"))
	assertFileExists(t, filepath.Join(cfgDir, "schema.config.yaml"))

	stub, err := os.ReadFile(filepath.Join(cfgDir, "subdag.config.yaml"))
	if err != nil {
		t.Fatalf("read stub: %v", err)
	}
	if !strings.Contains(string(stub), "test_name: subdag\n") || !strings.Contains(string(stub), "eq: subdag_sample") {
		t.Fatalf("unexpected stub:\n%s", stub)
	}
}

func TestInit_ScaffoldedConfigsLoad(t *testing.T) {
	tmp := t.TempDir()
	if _, err := NewInitializer(false).Init(tmp, "subdag"); err != nil {
		t.Fatalf("Init error: %v", err)
	}

	loader := config.NewLoader(filepath.Join(tmp, "config"))
	base, err := loader.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	cfg, warn := loader.LoadForTest(base, "subdag")
	if warn != nil {
		t.Fatalf("LoadForTest warning: %v", warn)
	}
	if cfg.TestName != "subdag" {
		t.Fatalf("expected test name subdag, got %q", cfg.TestName)
	}
	if _, ok := cfg.Expectations.JSONPath["$.display_name"]; !ok {
		t.Fatalf("expected jsonpath expectation, got %+v", cfg.Expectations)
	}
}

func TestInit_SkipsExistingFilesUnlessForce(t *testing.T) {
	tmp := t.TempDir()
	cfgDir := filepath.Join(tmp, "config")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	custom := filepath.Join(cfgDir, "default.config.yaml")
	if err := os.WriteFile(custom, []byte("test_name: custom\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewInitializer(false).Init(tmp); err != nil {
		t.Fatalf("Init error: %v", err)
	}
	if b, _ := os.ReadFile(custom); string(b) != "test_name: custom\n" {
		t.Fatalf("expected existing file kept, got %q", b)
	}

	if _, err := NewInitializer(true).Init(tmp); err != nil {
		t.Fatalf("Init --force error: %v", err)
	}
	if b, _ := os.ReadFile(custom); string(b) == "test_name: custom\n" {
		t.Fatalf("expected file overwritten with force")
	}
}

func TestInit_RejectsPathLikeNames(t *testing.T) {
	if _, err := NewInitializer(false).Init(t.TempDir(), "../escape"); err == nil {
		t.Fatalf("expected error")
	}
}
