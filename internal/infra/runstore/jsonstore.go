package runstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/CarterFendley/pipelines/internal/domain"
	"github.com/CarterFendley/pipelines/internal/ports"
)

const maskValue = "********"

// JSONStore writes one JSON document per launcher invocation under a results directory.
type JSONStore struct {
	dir        string
	masking    bool
	writeIndex bool
	now        func() time.Time
	newID      func() string
}

type Option func(*JSONStore)

// WithIndex enables a simple JSONL index: <dir>/index.jsonl
func WithIndex(enabled bool) Option {
	return func(s *JSONStore) { s.writeIndex = enabled }
}

// WithMasking hides argument values whose key looks like a credential.
func WithMasking(enabled bool) Option {
	return func(s *JSONStore) { s.masking = enabled }
}

func withIDGenerator(fn func() string) Option {
	return func(s *JSONStore) { s.newID = fn }
}

func NewJSONStore(dir string, opts ...Option) *JSONStore {
	s := &JSONStore{
		dir:     dir,
		masking: true,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.RecordStore = (*JSONStore)(nil)

// SaveRecord persists rec as <timestamp>_<test>.json and returns the record id.
func (s *JSONStore) SaveRecord(rec domain.RunRecord) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", &domain.OpError{
			Op:   "runstore.mkdir",
			Kind: domain.KindExecution,
			Path: s.dir,
			Err:  err,
		}
	}

	toSave := rec
	if toSave.ID == "" {
		toSave.ID = s.newID()
	}
	if toSave.StartedAt.IsZero() {
		toSave.StartedAt = s.now()
	}
	toSave.StartedAt = toSave.StartedAt.UTC()
	if !toSave.EndedAt.IsZero() {
		toSave.EndedAt = toSave.EndedAt.UTC()
	}
	if s.masking {
		toSave.Arguments = maskArguments(rec.Arguments)
	}

	slug := slugify(rec.TestName)
	if slug == "" {
		slug = "run"
	}
	base := fmt.Sprintf("%s_%s", toSave.StartedAt.Format("20060102T150405Z"), slug)
	path := uniquePath(s.dir, base)

	b, err := json.MarshalIndent(toSave, "", "  ")
	if err != nil {
		return "", &domain.OpError{
			Op:   "runstore.marshal",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return "", &domain.OpError{
			Op:   "runstore.write",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", &domain.OpError{
			Op:   "runstore.rename",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	if s.writeIndex {
		_ = s.appendIndex(filepath.Base(path), toSave)
	}
	return toSave.ID, nil
}

// Path returns the file a record with the given id was written to, if any.
func (s *JSONStore) Path(id string) (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", &domain.OpError{Op: "runstore.path", Kind: domain.KindNotFound, Path: s.dir, Err: err}
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		p := filepath.Join(s.dir, e.Name())
		b, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		var rec struct {
			ID string `json:"id"`
		}
		if json.Unmarshal(b, &rec) == nil && rec.ID == id {
			return p, nil
		}
	}
	return "", &domain.OpError{
		Op:   "runstore.path",
		Kind: domain.KindNotFound,
		Err:  fmt.Errorf("record %s: %w", id, domain.ErrNotFound),
	}
}

func uniquePath(dir, base string) string {
	path := filepath.Join(dir, base+".json")
	for n := 2; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		path = filepath.Join(dir, fmt.Sprintf("%s_%d.json", base, n))
	}
}

func (s *JSONStore) appendIndex(filename string, rec domain.RunRecord) error {
	type idx struct {
		ID         string    `json:"id"`
		File       string    `json:"file"`
		TestName   string    `json:"test_name"`
		Experiment string    `json:"experiment"`
		StartedAt  time.Time `json:"started_at"`
	}
	line, err := json.Marshal(idx{
		ID:         rec.ID,
		File:       filename,
		TestName:   rec.TestName,
		Experiment: rec.ExperimentName,
		StartedAt:  rec.StartedAt,
	})
	if err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(s.dir, "index.jsonl"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(append(line, '\n'))
	return err
}

// maskArguments returns a masked copy (does NOT mutate the input).
func maskArguments(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		if isSensitiveKey(k) {
			out[k] = maskValue
			continue
		}
		out[k] = v
	}
	return out
}

func isSensitiveKey(k string) bool {
	kk := strings.ToLower(k)
	return strings.Contains(kk, "token") ||
		strings.Contains(kk, "secret") ||
		strings.Contains(kk, "password") ||
		strings.Contains(kk, "api_key") ||
		strings.Contains(kk, "credential")
}

// slugify produces a safe filename component.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
