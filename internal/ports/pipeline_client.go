package ports

import (
	"context"
	"time"

	"github.com/CarterFendley/pipelines/internal/domain"
)

// SubmitRequest describes a run created from a compiled pipeline artifact.
type SubmitRequest struct {
	ExperimentID  string
	DisplayName   string
	PackagePath   string
	Parameters    map[string]any
	EnableCaching *bool
}

// PipelineClient is the orchestration API surface used by the checkers.
type PipelineClient interface {
	EnsureExperiment(ctx context.Context, name string) (domain.Experiment, error)
	GetExperiment(ctx context.Context, name string) (domain.Experiment, error)
	SubmitRun(ctx context.Context, req SubmitRequest) (domain.Run, error)
	GetRun(ctx context.Context, runID string) (domain.Run, error)
	ListRuns(ctx context.Context, experimentID string) ([]domain.Run, error)
	WaitForRun(ctx context.Context, runID string, timeout time.Duration) (domain.Run, error)
}
