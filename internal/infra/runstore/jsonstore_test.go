package runstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/CarterFendley/pipelines/internal/domain"
)

func sampleRecord(start time.Time) domain.RunRecord {
	return domain.RunRecord{
		TestName:       "xgboost_training_cm",
		Kind:           domain.KindScript,
		Host:           "http://localhost:8888",
		ExperimentName: "xgboost_training_cm-test",
		RunIDs:         []string{"run-1"},
		Arguments: map[string]any{
			"output":       "/results",
			"access_token": "abc123",
			"db_password":  "p@ss",
		},
		StartedAt: start,
		EndedAt:   start.Add(2 * time.Second),
		Cases: []domain.TestCase{
			{Name: "create pipeline run", Passed: true},
		},
	}
}

func TestSaveRecord_CreatesJSONFile(t *testing.T) {
	tmp := t.TempDir()
	store := NewJSONStore(tmp, withIDGenerator(func() string { return "fixed-id" }))

	start := time.Date(2026, 2, 3, 10, 11, 12, 0, time.UTC)
	id, err := store.SaveRecord(sampleRecord(start))
	if err != nil {
		t.Fatalf("SaveRecord error: %v", err)
	}
	if id != "fixed-id" {
		t.Fatalf("expected generated id, got=%q", id)
	}

	wantFile := filepath.Join(tmp, "20260203T101112Z_xgboost-training-cm.json")
	b, err := os.ReadFile(wantFile)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}

	var decoded domain.RunRecord
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.ID != "fixed-id" {
		t.Fatalf("expected id persisted, got=%q", decoded.ID)
	}
	if decoded.ExperimentName != "xgboost_training_cm-test" {
		t.Fatalf("expected experiment name, got=%q", decoded.ExperimentName)
	}
	if len(decoded.Cases) != 1 || !decoded.Cases[0].Passed {
		t.Fatalf("expected one passing case, got=%+v", decoded.Cases)
	}

	p, err := store.Path("fixed-id")
	if err != nil || p != wantFile {
		t.Fatalf("expected Path to find %s, got=%s err=%v", wantFile, p, err)
	}
}

func TestSaveRecord_MasksSensitiveArguments(t *testing.T) {
	tmp := t.TempDir()
	store := NewJSONStore(tmp)

	rec := sampleRecord(time.Date(2026, 2, 3, 10, 11, 12, 0, time.UTC))
	orig := rec.Arguments["access_token"]

	id, err := store.SaveRecord(rec)
	if err != nil {
		t.Fatalf("SaveRecord error: %v", err)
	}
	if rec.Arguments["access_token"] != orig {
		t.Fatalf("expected original record not mutated")
	}
	if len(id) != 36 {
		t.Fatalf("expected uuid id, got=%q", id)
	}

	b, err := os.ReadFile(filepath.Join(tmp, "20260203T101112Z_xgboost-training-cm.json"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	var decoded domain.RunRecord
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got := decoded.Arguments
	if got["access_token"] != maskValue || got["db_password"] != maskValue {
		t.Fatalf("expected credentials masked, got=%v", got)
	}
	if got["output"] != "/results" {
		t.Fatalf("expected output preserved, got=%v", got["output"])
	}
}

func TestSaveRecord_UsesUniqueFilenameOnCollision(t *testing.T) {
	tmp := t.TempDir()
	store := NewJSONStore(tmp, WithMasking(false), WithIndex(true))

	rec := sampleRecord(time.Date(2026, 2, 3, 10, 11, 12, 0, time.UTC))
	if _, err := store.SaveRecord(rec); err != nil {
		t.Fatalf("SaveRecord #1 error: %v", err)
	}
	if _, err := store.SaveRecord(rec); err != nil {
		t.Fatalf("SaveRecord #2 error: %v", err)
	}

	second := filepath.Join(tmp, "20260203T101112Z_xgboost-training-cm_2.json")
	if _, err := os.Stat(second); err != nil {
		t.Fatalf("expected second file at %s, stat err=%v", second, err)
	}

	idx, err := os.ReadFile(filepath.Join(tmp, "index.jsonl"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if n := strings.Count(string(idx), "\n"); n != 2 {
		t.Fatalf("expected 2 index lines, got=%d", n)
	}
}

func TestPath_NotFound(t *testing.T) {
	store := NewJSONStore(t.TempDir())
	_, err := store.Path("missing")
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected KindNotFound, got: %v", err)
	}
}
