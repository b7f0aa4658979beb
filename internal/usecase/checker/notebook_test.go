package checker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CarterFendley/pipelines/internal/domain"
)

func notebookTarget(t *testing.T, runPipeline bool) Target {
	t.Helper()
	cfg := domain.DefaultTestConfig()
	cfg.RunPipeline = runPipeline
	return Target{
		TestName:       "lightweight_component",
		Kind:           domain.KindNotebook,
		ExperimentName: "lightweight_component-test",
		ResultsDir:     t.TempDir(),
		ScriptPath:     filepath.Join("samples", "lightweight_component.py"),
		Config:         cfg,
	}
}

func TestNotebook_ExitCodeOnly(t *testing.T) {
	runner := &fakeRunner{}
	client := newFakeClient()
	reports := &fakeReports{}

	c := NewNotebook(notebookTarget(t, false), Deps{Client: client, Runner: runner, Reports: reports})
	require.NoError(t, c.Run(context.Background()))
	require.NoError(t, c.Check(context.Background()))

	assert.Equal(t, filepath.Join("samples", "lightweight_component.py"), runner.script)
	require.Len(t, reports.report.Cases, 1)
	assert.Equal(t, CaseExitCode, reports.report.Cases[0].Name)
	assert.Empty(t, client.waited)
}

func TestNotebook_NonZeroExitFails(t *testing.T) {
	runner := &fakeRunner{code: 2}
	reports := &fakeReports{}

	c := NewNotebook(notebookTarget(t, false), Deps{Client: newFakeClient(), Runner: runner, Reports: reports})
	require.NoError(t, c.Run(context.Background()))

	err := c.Check(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCheckFailed))
	assert.Equal(t, "test script exited with code 2", reports.report.Cases[0].Failure)
}

func TestNotebook_WaitsForEveryRun(t *testing.T) {
	client := newFakeClient()
	exp := domain.Experiment{ID: "exp-7", DisplayName: "lightweight_component-test"}
	client.experiments[exp.DisplayName] = exp
	client.runs = []domain.Run{
		{ID: "a", DisplayName: "first", ExperimentID: "exp-7"},
		{ID: "b", DisplayName: "second", ExperimentID: "exp-7"},
		{ID: "c", DisplayName: "elsewhere", ExperimentID: "exp-8"},
	}
	client.final["a"] = domain.Run{ID: "a", State: domain.RunStateSucceeded}
	client.final["b"] = domain.Run{ID: "b", State: domain.RunStateFailed}
	reports := &fakeReports{}
	records := &fakeRecords{}

	c := NewNotebook(notebookTarget(t, true), Deps{Client: client, Runner: &fakeRunner{}, Reports: reports, Records: records})
	require.NoError(t, c.Run(context.Background()))

	err := c.Check(context.Background())
	require.Error(t, err, "second run failed")

	assert.Equal(t, []string{"a", "b"}, client.waited)
	assert.Equal(t, []string{"a", "b"}, records.last.RunIDs)
	assert.Len(t, reports.report.Cases, 5)
	assert.Equal(t, 1, reports.report.Failures())
}

func TestNotebook_MissingExperimentFails(t *testing.T) {
	reports := &fakeReports{}
	c := NewNotebook(notebookTarget(t, true), Deps{Client: newFakeClient(), Runner: &fakeRunner{}, Reports: reports})
	require.NoError(t, c.Run(context.Background()))

	require.Error(t, c.Check(context.Background()))
	require.Len(t, reports.report.Cases, 2)
	assert.Equal(t, CaseJobCompletion, reports.report.Cases[1].Name)
	assert.False(t, reports.report.Cases[1].Passed)
}

func TestNotebook_CheckWithoutRun(t *testing.T) {
	reports := &fakeReports{}
	c := NewNotebook(notebookTarget(t, false), Deps{Client: newFakeClient(), Runner: &fakeRunner{}, Reports: reports})

	require.Error(t, c.Check(context.Background()))
	assert.Equal(t, "notebook script was not executed", reports.report.Cases[0].Failure)
}
