package pipelineapi

import (
	"encoding/json"

	"github.com/CarterFendley/pipelines/internal/domain"
)

type apiHealthz struct {
	MultiUser bool `json:"multi_user"`
}

type apiExperiment struct {
	ExperimentID string `json:"experiment_id,omitempty"`
	DisplayName  string `json:"display_name"`
	Namespace    string `json:"namespace,omitempty"`
}

type apiListExperiments struct {
	Experiments   []apiExperiment `json:"experiments"`
	NextPageToken string          `json:"next_page_token"`
}

type apiRuntimeConfig struct {
	Parameters map[string]any `json:"parameters,omitempty"`
}

type apiCreateRun struct {
	DisplayName   string           `json:"display_name"`
	ExperimentID  string           `json:"experiment_id,omitempty"`
	PipelineSpec  any              `json:"pipeline_spec"`
	RuntimeConfig apiRuntimeConfig `json:"runtime_config"`
}

type apiStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type apiRun struct {
	RunID        string     `json:"run_id"`
	DisplayName  string     `json:"display_name"`
	ExperimentID string     `json:"experiment_id"`
	State        string     `json:"state"`
	Error        *apiStatus `json:"error,omitempty"`
}

type apiListRuns struct {
	Runs          []json.RawMessage `json:"runs"`
	NextPageToken string            `json:"next_page_token"`
}

type predicate struct {
	Key         string `json:"key"`
	Operation   string `json:"operation"`
	StringValue string `json:"string_value"`
}

type filter struct {
	Predicates []predicate `json:"predicates"`
}

func toExperiment(e apiExperiment) domain.Experiment {
	return domain.Experiment{
		ID:          e.ExperimentID,
		DisplayName: e.DisplayName,
		Namespace:   e.Namespace,
	}
}

func toRun(raw []byte) (domain.Run, error) {
	var r apiRun
	if err := json.Unmarshal(raw, &r); err != nil {
		return domain.Run{}, err
	}
	state := domain.RunState(r.State)
	if state == "" {
		state = domain.RunStateUnspecified
	}
	out := domain.Run{
		ID:           r.RunID,
		DisplayName:  r.DisplayName,
		ExperimentID: r.ExperimentID,
		State:        state,
		Raw:          append([]byte(nil), raw...),
	}
	if r.Error != nil {
		out.ErrorMessage = r.Error.Message
	}
	return out, nil
}
