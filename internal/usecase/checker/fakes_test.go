package checker

import (
	"context"
	"errors"
	"time"

	"github.com/CarterFendley/pipelines/internal/domain"
	"github.com/CarterFendley/pipelines/internal/ports"
)

// --- fakes shared by the checker tests ---

type fakeClient struct {
	experiments map[string]domain.Experiment
	runs        []domain.Run
	final       map[string]domain.Run
	waitErr     error
	submitErr   error

	submitted []ports.SubmitRequest
	waited    []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		experiments: map[string]domain.Experiment{},
		final:       map[string]domain.Run{},
	}
}

func (f *fakeClient) EnsureExperiment(_ context.Context, name string) (domain.Experiment, error) {
	if e, ok := f.experiments[name]; ok {
		return e, nil
	}
	e := domain.Experiment{ID: "exp-" + name, DisplayName: name}
	f.experiments[name] = e
	return e, nil
}

func (f *fakeClient) GetExperiment(_ context.Context, name string) (domain.Experiment, error) {
	if e, ok := f.experiments[name]; ok {
		return e, nil
	}
	return domain.Experiment{}, &domain.OpError{Op: "fake.get_experiment", Kind: domain.KindNotFound, Err: domain.ErrNotFound}
}

func (f *fakeClient) SubmitRun(_ context.Context, req ports.SubmitRequest) (domain.Run, error) {
	if f.submitErr != nil {
		return domain.Run{}, f.submitErr
	}
	f.submitted = append(f.submitted, req)
	return domain.Run{ID: "run-1", DisplayName: req.DisplayName, ExperimentID: req.ExperimentID, State: domain.RunStatePending}, nil
}

func (f *fakeClient) GetRun(_ context.Context, id string) (domain.Run, error) {
	return f.final[id], nil
}

func (f *fakeClient) ListRuns(_ context.Context, experimentID string) ([]domain.Run, error) {
	var out []domain.Run
	for _, r := range f.runs {
		if r.ExperimentID == experimentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeClient) WaitForRun(_ context.Context, id string, _ time.Duration) (domain.Run, error) {
	f.waited = append(f.waited, id)
	if f.waitErr != nil {
		return domain.Run{}, f.waitErr
	}
	r, ok := f.final[id]
	if !ok {
		return domain.Run{}, errors.New("unknown run " + id)
	}
	return r, nil
}

type fakeRunner struct {
	code   int
	err    error
	script string
}

func (r *fakeRunner) RunScript(_ context.Context, script string) (int, error) {
	r.script = script
	return r.code, r.err
}

type fakeReports struct {
	path   string
	report domain.TestReport
	writes int
}

func (w *fakeReports) WriteReport(path string, report domain.TestReport) error {
	w.path = path
	w.report = report
	w.writes++
	return nil
}

type fakeRecords struct {
	last    domain.RunRecord
	saves   int
	lookups []string
}

func (s *fakeRecords) SaveRecord(rec domain.RunRecord) (string, error) {
	s.last = rec
	s.saves++
	return "rec-1", nil
}

func (s *fakeRecords) Path(id string) (string, error) {
	s.lookups = append(s.lookups, id)
	return "/results/" + id + ".json", nil
}

func fixedNow() func() time.Time {
	t := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}
