// Package checker submits or executes a prepared sample and judges the outcome.
package checker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/CarterFendley/pipelines/internal/app/template"
	"github.com/CarterFendley/pipelines/internal/domain"
	"github.com/CarterFendley/pipelines/internal/ports"
)

// Case names shared by both checkers.
const (
	CaseCompiledArtifact = "input generated yaml file"
	CaseCreateRun        = "create pipeline run"
	CaseJobCompletion    = "job completion"
	CaseExitCode         = "test exit code"
)

// Target describes one prepared sample test.
type Target struct {
	TestName       string
	Kind           domain.TestKind
	ExperimentName string
	Host           string
	ResultsDir     string
	ImagePrefix    string

	// PackagePath is the compiled artifact submitted by the script checker.
	PackagePath string
	// ScriptPath is the converted notebook executed by the notebook checker.
	ScriptPath string

	Config domain.TestConfig
}

// Vars are the template variables available to arguments of this target.
func (t Target) Vars() map[string]string {
	return map[string]string{
		template.VarOutput:         t.ResultsDir,
		template.VarHost:           t.Host,
		template.VarTestName:       t.TestName,
		template.VarExperimentName: t.ExperimentName,
		template.VarImagePrefix:    t.ImagePrefix,
	}
}

// ResultPath is where the junit report of this target goes.
func (t Target) ResultPath() string {
	return filepath.Join(t.ResultsDir, domain.ResultFileName(t.TestName))
}

// Deps are the collaborators shared by the checkers.
type Deps struct {
	Client  ports.PipelineClient
	Runner  ports.ScriptRunner
	Reports ports.ReportWriter
	Records ports.RecordStore
	Logger  *slog.Logger
	Now     func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// reporter accumulates cases and persists them once the check is over.
type reporter struct {
	target  Target
	deps    Deps
	report  domain.TestReport
	runIDs  []string
	args    map[string]any
	started time.Time
}

func newReporter(t Target, d Deps) reporter {
	d = d.withDefaults()
	return reporter{
		target:  t,
		deps:    d,
		report:  domain.TestReport{Name: t.TestName},
		started: d.Now(),
	}
}

func (r *reporter) add(name string, passed bool, failure string, elapsed time.Duration) {
	r.report.Add(name, passed, failure, elapsed)
	level := slog.LevelInfo
	if !passed {
		level = slog.LevelWarn
	}
	r.deps.Logger.Log(context.Background(), level, "checker.case",
		"test", r.target.TestName,
		"case", name,
		"passed", passed,
		"failure", failure,
	)
}

func (r *reporter) addCases(cases []domain.TestCase) {
	for _, c := range cases {
		r.add(c.Name, c.Passed, c.Failure, c.Elapsed)
	}
}

// Report returns a copy of the cases recorded so far.
func (r *reporter) Report() domain.TestReport {
	out := r.report
	out.Cases = append([]domain.TestCase(nil), r.report.Cases...)
	return out
}

// finish writes the junit report and the run record, then reports whether every case passed.
func (r *reporter) finish() error {
	var errs []error

	path := r.target.ResultPath()
	if r.deps.Reports != nil {
		if err := r.deps.Reports.WriteReport(path, r.report); err != nil {
			errs = append(errs, err)
		} else {
			r.deps.Logger.Info("checker.report.written", "path", path)
		}
	}

	if r.deps.Records != nil {
		rec := domain.RunRecord{
			TestName:       r.target.TestName,
			Kind:           r.target.Kind,
			Host:           r.target.Host,
			ExperimentName: r.target.ExperimentName,
			RunIDs:         r.runIDs,
			Arguments:      r.args,
			StartedAt:      r.started,
			EndedAt:        r.deps.Now(),
			Cases:          r.report.Cases,
		}
		if id, err := r.deps.Records.SaveRecord(rec); err != nil {
			errs = append(errs, err)
		} else if p, err := r.deps.Records.Path(id); err == nil {
			r.deps.Logger.Info("checker.record.saved", "id", id, "path", p)
		}
	}

	if !r.report.Passed() {
		errs = append(errs, &domain.OpError{
			Op:   "checker.check",
			Kind: domain.KindExecution,
			Err: fmt.Errorf("%s: %d of %d cases failed: %w",
				r.target.TestName, r.report.Failures(), len(r.report.Cases), domain.ErrCheckFailed),
		})
	}
	return errors.Join(errs...)
}

func timeoutOf(cfg domain.TestConfig) time.Duration {
	return time.Duration(cfg.TestTimeout) * time.Second
}
