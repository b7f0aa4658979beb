package checker

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/CarterFendley/pipelines/internal/app/template"
	"github.com/CarterFendley/pipelines/internal/domain"
	"github.com/CarterFendley/pipelines/internal/ports"
	"github.com/CarterFendley/pipelines/internal/usecase/assert"
)

// Script submits a compiled artifact as a run and waits for it.
type Script struct {
	reporter
	run     domain.Run
	runErr  error
	created bool
}

var _ ports.Checker = (*Script)(nil)

func NewScript(t Target, d Deps) *Script {
	return &Script{reporter: newReporter(t, d)}
}

// RunName is the display name given to the submitted run.
func RunName(testName string) string {
	return testName + "_sample"
}

func (s *Script) Run(ctx context.Context) error {
	t := s.target

	if info, err := os.Stat(t.PackagePath); err != nil || info.IsDir() {
		msg := fmt.Sprintf("compiled artifact %s is missing", t.PackagePath)
		s.add(CaseCompiledArtifact, false, msg, 0)
		s.runErr = &domain.OpError{Op: "checker.script.run", Kind: domain.KindNotFound, Path: t.PackagePath, Err: domain.ErrNotFound}
		return s.runErr
	}
	s.add(CaseCompiledArtifact, true, "", 0)

	args, err := template.RenderMap(t.Config.Arguments, t.Vars())
	if err != nil {
		s.add(CaseCreateRun, false, err.Error(), 0)
		s.runErr = err
		return err
	}
	args[domain.OutputParam] = t.ResultsDir
	s.args = args

	exp, err := s.deps.Client.EnsureExperiment(ctx, t.ExperimentName)
	if err != nil {
		s.add(CaseCreateRun, false, fmt.Sprintf("get or create experiment %s: %v", t.ExperimentName, err), 0)
		s.runErr = err
		return err
	}

	start := s.deps.Now()
	run, err := s.deps.Client.SubmitRun(ctx, ports.SubmitRequest{
		ExperimentID: exp.ID,
		DisplayName:  RunName(t.TestName),
		PackagePath:  t.PackagePath,
		Parameters:   args,
	})
	if err != nil {
		s.add(CaseCreateRun, false, err.Error(), s.deps.Now().Sub(start))
		s.runErr = err
		return err
	}

	s.run = run
	s.created = true
	s.runIDs = append(s.runIDs, run.ID)
	s.add(CaseCreateRun, true, "", s.deps.Now().Sub(start))
	s.deps.Logger.Info("checker.script.submitted", "test", t.TestName, "run_id", run.ID, "experiment", exp.ID)
	return nil
}

// Check waits for the submitted run, evaluates expectations and writes reports.
// It always writes reports, also when Run failed.
func (s *Script) Check(ctx context.Context) error {
	if !s.created {
		msg := "no pipeline run was created"
		if s.runErr != nil {
			msg = fmt.Sprintf("%s: %v", msg, s.runErr)
		}
		s.add(CaseJobCompletion, false, msg, 0)
		return s.finish()
	}

	start := s.deps.Now()
	run, err := s.deps.Client.WaitForRun(ctx, s.run.ID, timeoutOf(s.target.Config))
	elapsed := s.deps.Now().Sub(start)
	if err != nil {
		s.add(CaseJobCompletion, false, "waiting for job completion failure: "+err.Error(), elapsed)
		return errors.Join(s.finish(), ctx.Err())
	}

	s.add(CaseJobCompletion, true, "", elapsed)
	s.addCases(assert.Evaluate(s.target.Config.Expectations, run))
	return s.finish()
}
