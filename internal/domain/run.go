package domain

import "time"

// RunState mirrors the orchestration API's runtime state enum.
type RunState string

const (
	RunStateUnspecified RunState = "RUNTIME_STATE_UNSPECIFIED"
	RunStatePending     RunState = "PENDING"
	RunStateRunning     RunState = "RUNNING"
	RunStateSucceeded   RunState = "SUCCEEDED"
	RunStateSkipped     RunState = "SKIPPED"
	RunStateFailed      RunState = "FAILED"
	RunStateCanceling   RunState = "CANCELING"
	RunStateCanceled    RunState = "CANCELED"
	RunStatePaused      RunState = "PAUSED"
)

// IsTerminal reports whether no further transitions are expected.
func (s RunState) IsTerminal() bool {
	switch s {
	case RunStateSucceeded, RunStateSkipped, RunStateFailed, RunStateCanceled:
		return true
	}
	return false
}

// Run is the subset of an orchestration run the launcher cares about.
type Run struct {
	ID           string
	DisplayName  string
	ExperimentID string
	State        RunState
	ErrorMessage string

	// Raw is the JSON document returned by the API, used for JSONPath expectations.
	Raw []byte
}

// Experiment groups runs under a display name.
type Experiment struct {
	ID          string
	DisplayName string
	Namespace   string
}

// TestCase is a single junit test case.
type TestCase struct {
	Name    string
	Passed  bool
	Failure string
	Elapsed time.Duration
}

// TestReport collects the cases of one sample test.
type TestReport struct {
	Name  string
	Cases []TestCase
}

// Add appends a case. A failure message is only kept for failed cases.
func (r *TestReport) Add(name string, passed bool, failure string, elapsed time.Duration) {
	tc := TestCase{Name: name, Passed: passed, Elapsed: elapsed}
	if !passed {
		tc.Failure = failure
	}
	r.Cases = append(r.Cases, tc)
}

// Failures counts failed cases.
func (r TestReport) Failures() int {
	n := 0
	for _, c := range r.Cases {
		if !c.Passed {
			n++
		}
	}
	return n
}

// Passed reports whether every case passed. An empty report has not passed.
func (r TestReport) Passed() bool {
	return len(r.Cases) > 0 && r.Failures() == 0
}

// RunRecord is the persisted summary of one launcher invocation.
type RunRecord struct {
	ID             string         `json:"id"`
	TestName       string         `json:"test_name"`
	Kind           TestKind       `json:"kind"`
	Host           string         `json:"host"`
	ExperimentName string         `json:"experiment_name"`
	RunIDs         []string       `json:"run_ids"`
	Arguments      map[string]any `json:"arguments,omitempty"`
	StartedAt      time.Time      `json:"started_at"`
	EndedAt        time.Time      `json:"ended_at"`
	Cases          []TestCase     `json:"cases"`
}
