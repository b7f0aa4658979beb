package checker

import (
	"context"
	"errors"
	"fmt"

	"github.com/CarterFendley/pipelines/internal/domain"
	"github.com/CarterFendley/pipelines/internal/ports"
	"github.com/CarterFendley/pipelines/internal/usecase/assert"
)

// Notebook executes a converted notebook and, when it submits pipelines, waits for their runs.
type Notebook struct {
	reporter
	exitCode int
	execErr  error
	ran      bool
}

var _ ports.Checker = (*Notebook)(nil)

func NewNotebook(t Target, d Deps) *Notebook {
	return &Notebook{reporter: newReporter(t, d)}
}

// Run executes the script. A non-zero exit is recorded at Check time, not returned.
func (n *Notebook) Run(ctx context.Context) error {
	n.args = n.target.Config.NotebookParams
	code, err := n.deps.Runner.RunScript(ctx, n.target.ScriptPath)
	n.ran = true
	n.exitCode = code
	n.execErr = err
	if err != nil {
		return err
	}
	n.deps.Logger.Info("checker.notebook.executed", "script", n.target.ScriptPath, "exit_code", code)
	return nil
}

func (n *Notebook) Check(ctx context.Context) error {
	switch {
	case !n.ran:
		n.add(CaseExitCode, false, "notebook script was not executed", 0)
	case n.execErr != nil:
		n.add(CaseExitCode, false, n.execErr.Error(), 0)
	case n.exitCode != 0:
		n.add(CaseExitCode, false, fmt.Sprintf("test script exited with code %d", n.exitCode), 0)
	default:
		n.add(CaseExitCode, true, "", 0)
	}

	if n.target.Config.RunPipeline {
		if err := n.checkRuns(ctx); err != nil {
			return errors.Join(n.finish(), err)
		}
	}
	return n.finish()
}

// checkRuns waits for every run filed under the test experiment. It returns only
// context errors; API failures become failed cases.
func (n *Notebook) checkRuns(ctx context.Context) error {
	name := n.target.ExperimentName
	exp, err := n.deps.Client.GetExperiment(ctx, name)
	if err != nil {
		n.add(CaseJobCompletion, false, fmt.Sprintf("experiment %s: %v", name, err), 0)
		return ctx.Err()
	}

	runs, err := n.deps.Client.ListRuns(ctx, exp.ID)
	if err != nil {
		n.add(CaseJobCompletion, false, fmt.Sprintf("list runs of %s: %v", name, err), 0)
		return ctx.Err()
	}
	if len(runs) == 0 {
		n.add(CaseJobCompletion, false, fmt.Sprintf("experiment %s has no runs", name), 0)
		return nil
	}

	timeout := timeoutOf(n.target.Config)
	for _, r := range runs {
		n.runIDs = append(n.runIDs, r.ID)
		caseName := fmt.Sprintf("%s %s", CaseJobCompletion, r.DisplayName)

		start := n.deps.Now()
		done, err := n.deps.Client.WaitForRun(ctx, r.ID, timeout)
		elapsed := n.deps.Now().Sub(start)
		if err != nil {
			n.add(caseName, false, "waiting for job completion failure: "+err.Error(), elapsed)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		n.add(caseName, true, "", elapsed)

		state := assert.State(n.target.Config.Expectations.State, done)
		state.Name = fmt.Sprintf("%s %s", state.Name, r.DisplayName)
		n.addCases([]domain.TestCase{state})
	}
	return nil
}
