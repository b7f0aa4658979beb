package domain

// DefaultTestTimeoutSeconds bounds how long a checker waits for a run to finish.
const DefaultTestTimeoutSeconds = 1800

// OutputParam is filled with the results location at launch time, whatever the config says.
const OutputParam = "output"

// TestConfig is the per-sample configuration read from <name>.config.yaml,
// layered on top of default.config.yaml.
type TestConfig struct {
	TestName       string
	Arguments      map[string]any
	NotebookParams map[string]any
	TestTimeout    int
	RunPipeline    bool
	Expectations   Expectations
}

// Expectations describe what a finished run must look like.
type Expectations struct {
	// State is the terminal run state required for success.
	State RunState

	// JSONPath assertions against the run document, keyed by expression.
	JSONPath map[string]JSONPathAssertion
}

// JSONPathAssertion defines a JSONPath-based check.
type JSONPathAssertion struct {
	Exists   bool
	Eq       *string
	Contains *string
	Matches  *string
	Gt       *float64
	Lt       *float64
}

// DefaultTestConfig provides sane defaults if default.config.yaml is partially missing.
func DefaultTestConfig() TestConfig {
	return TestConfig{
		TestName:       "default_sample_test",
		Arguments:      map[string]any{},
		NotebookParams: map[string]any{},
		TestTimeout:    DefaultTestTimeoutSeconds,
		RunPipeline:    true,
		Expectations: Expectations{
			State:    RunStateSucceeded,
			JSONPath: map[string]JSONPathAssertion{},
		},
	}
}

// Clone returns a deep-enough copy: top-level maps are duplicated.
func (c TestConfig) Clone() TestConfig {
	out := c
	out.Arguments = cloneAnyMap(c.Arguments)
	out.NotebookParams = cloneAnyMap(c.NotebookParams)
	out.Expectations.JSONPath = make(map[string]JSONPathAssertion, len(c.Expectations.JSONPath))
	for k, v := range c.Expectations.JSONPath {
		out.Expectations.JSONPath[k] = v
	}
	return out
}

func cloneAnyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
