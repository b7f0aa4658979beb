// Package launcher compiles a sample, prepares it for submission and hands it to a checker.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/CarterFendley/pipelines/internal/app/template"
	"github.com/CarterFendley/pipelines/internal/domain"
	"github.com/CarterFendley/pipelines/internal/ports"
	"github.com/CarterFendley/pipelines/internal/usecase/checker"
)

// ExperimentOverrideEnv makes every run created by the sample land in the test experiment.
const ExperimentOverrideEnv = "KF_PIPELINES_OVERRIDE_EXPERIMENT_NAME"

// DefaultNamespace is where the orchestration backend is installed.
const DefaultNamespace = "kubeflow"

// Options are the per-invocation launcher arguments.
type Options struct {
	TestPath          string
	ResultsDir        string
	Function          string
	Host              string
	TargetImagePrefix string
	Namespace         string
	SampleTestDir     string
	KeepArtifacts     bool
}

// Deps are the collaborators of the launcher. Zero-valued process hooks default to the os package.
type Deps struct {
	Resolver  ports.EndpointResolver
	Configs   ports.ConfigLoader
	Compiler  ports.PipelineCompiler
	Notebooks ports.NotebookPreparer
	Runner    ports.ScriptRunner
	NewClient func(host string) ports.PipelineClient
	Reports   ports.ReportWriter
	Records   ports.RecordStore
	Logger    *slog.Logger

	Setenv   func(key, value string) error
	Chdir    func(dir string) error
	TempFile func(pattern string) (string, error)
}

// Result summarizes a finished sample test.
type Result struct {
	TestName       string
	Kind           domain.TestKind
	Host           string
	ExperimentName string
	ResultPath     string
	Report         domain.TestReport
}

// SampleTest launches one sample. The component test differs only by its injector.
type SampleTest struct {
	opts     Options
	deps     Deps
	injector Injector

	host         string
	testName     string
	kind         domain.TestKind
	cfg          domain.TestConfig
	compiledPath string
	scriptPath   string
}

func NewSampleTest(opts Options, deps Deps) *SampleTest {
	return newSampleTest(opts, deps, NoopInjector{})
}

func NewComponentTest(opts Options, images ComponentImages, deps Deps) *SampleTest {
	s := newSampleTest(opts, deps, nil)
	s.injector = ComponentInjector{Images: images, Log: s.deps.Logger}
	return s
}

func newSampleTest(opts Options, deps Deps, inj Injector) *SampleTest {
	if opts.Namespace == "" {
		opts.Namespace = DefaultNamespace
	}
	// The sample dir becomes the working directory before checking, so relative paths are fixed now.
	opts.ResultsDir = absPath(opts.ResultsDir)
	opts.SampleTestDir = absPath(opts.SampleTestDir)
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Setenv == nil {
		deps.Setenv = os.Setenv
	}
	if deps.Chdir == nil {
		deps.Chdir = os.Chdir
	}
	if deps.TempFile == nil {
		deps.TempFile = tempFile
	}
	return &SampleTest{opts: opts, deps: deps, injector: inj}
}

// ResolveEndpoint fixes the API host, discovering it from cluster credentials when none was given.
func (s *SampleTest) ResolveEndpoint(ctx context.Context) (string, error) {
	if s.host != "" {
		return s.host, nil
	}

	host := s.opts.Host
	if host == "" {
		if s.deps.Resolver == nil {
			return "", &domain.OpError{Op: "launcher.resolve_endpoint", Kind: domain.KindCredentials, Err: domain.ErrCredentials}
		}
		h, err := s.deps.Resolver.Resolve(ctx, s.opts.Namespace)
		if err != nil {
			return "", err
		}
		host = h
	}

	s.host = host
	s.deps.Logger.Info("launcher.endpoint", "host", host, "healthz", host+"/apis/v2beta1/healthz")
	return host, nil
}

// Compile turns the test source into a compiled artifact. Default config problems are
// reported before any external tool runs.
func (s *SampleTest) Compile(ctx context.Context) error {
	testPath, err := filepath.Abs(s.opts.TestPath)
	if err != nil {
		return &domain.OpError{Op: "launcher.compile", Kind: domain.KindInvalidConfig, Path: s.opts.TestPath, Err: err}
	}
	info, err := os.Stat(testPath)
	if err != nil || !info.Mode().IsRegular() {
		if err == nil {
			err = errors.New("not a regular file")
		}
		return &domain.OpError{
			Op:   "launcher.compile",
			Kind: domain.KindNotFound,
			Path: testPath,
			Err:  fmt.Errorf("specified test path is not a valid file: %w", err),
		}
	}

	s.testName = domain.TestNameFromPath(testPath)
	kind, err := domain.KindFromPath(testPath)
	if err != nil {
		return err
	}
	s.kind = kind

	base, err := s.deps.Configs.LoadDefault()
	if err != nil {
		return err
	}
	cfg, warn := s.deps.Configs.LoadForTest(base, s.testName)
	if warn != nil {
		s.deps.Logger.Warn("launcher.config.fallback",
			"test", s.testName,
			"msg", "no legit config file found, using default args",
			"err", warn,
		)
	}
	s.cfg = cfg

	log := s.deps.Logger.With("test", s.testName, "kind", kind)
	source := testPath
	if kind == domain.KindNotebook {
		script, err := s.prepareNotebook(ctx, testPath)
		if err != nil {
			return err
		}
		s.scriptPath = script
		source = script
	}

	out, err := s.deps.TempFile(s.testName + "-*.yaml")
	if err != nil {
		return &domain.OpError{Op: "launcher.compile", Kind: domain.KindExecution, Err: err}
	}
	s.compiledPath = out

	log.Info("launcher.compile.start", "source", source, "output", out, "function", s.opts.Function)
	if err := s.deps.Compiler.Compile(ctx, source, out, s.opts.Function); err != nil {
		return err
	}
	log.Info("launcher.compile.done", "output", out)
	return nil
}

func (s *SampleTest) prepareNotebook(ctx context.Context, notebookPath string) (string, error) {
	params, err := template.RenderMap(s.cfg.NotebookParams, s.vars())
	if err != nil {
		return "", err
	}
	if _, ok := params[domain.OutputParam]; ok {
		params[domain.OutputParam] = s.resultsDir()
	}

	if err := s.deps.Notebooks.Prepare(ctx, notebookPath, params); err != nil {
		return "", err
	}
	return s.deps.Notebooks.ConvertToScript(ctx, notebookPath)
}

// Inject applies the launcher's image substitutions to the compiled artifact.
func (s *SampleTest) Inject() error {
	if s.compiledPath == "" {
		return &domain.OpError{Op: "launcher.inject", Kind: domain.KindExecution, Err: errors.New("nothing compiled yet")}
	}
	return s.injector.Inject(s.compiledPath, s.testName)
}

// RunTest compiles, injects and checks the sample. Reports are written whenever a checker ran.
func (s *SampleTest) RunTest(ctx context.Context) (Result, error) {
	host, err := s.ResolveEndpoint(ctx)
	if err != nil {
		return Result{}, err
	}

	err = s.Compile(ctx)
	defer s.cleanup()
	if err != nil {
		return Result{TestName: s.testName, Kind: s.kind, Host: host}, err
	}
	if err := s.Inject(); err != nil {
		return Result{TestName: s.testName, Kind: s.kind, Host: host}, err
	}

	experiment := domain.ExperimentName(s.testName)
	if err := s.deps.Setenv(ExperimentOverrideEnv, experiment); err != nil {
		return Result{}, &domain.OpError{Op: "launcher.setenv", Kind: domain.KindExecution, Err: err}
	}

	target := checker.Target{
		TestName:       s.testName,
		Kind:           s.kind,
		ExperimentName: experiment,
		Host:           host,
		ResultsDir:     s.resultsDir(),
		ImagePrefix:    s.opts.TargetImagePrefix,
		PackagePath:    s.compiledPath,
		ScriptPath:     s.scriptPath,
		Config:         s.cfg,
	}
	cdeps := checker.Deps{
		Runner:  s.deps.Runner,
		Reports: s.deps.Reports,
		Records: s.deps.Records,
		Logger:  s.deps.Logger,
	}
	if s.deps.NewClient != nil {
		cdeps.Client = s.deps.NewClient(host)
	}

	res := Result{
		TestName:       s.testName,
		Kind:           s.kind,
		Host:           host,
		ExperimentName: experiment,
		ResultPath:     target.ResultPath(),
	}

	// A failed chdir still lets Check write the reports.
	var c reportingChecker
	var runErr, chdirErr error
	if s.kind == domain.KindNotebook {
		c = checker.NewNotebook(target, cdeps)
		runErr = c.Run(ctx)
		chdirErr = s.chdirSampleDir()
	} else {
		c = checker.NewScript(target, cdeps)
		if chdirErr = s.chdirSampleDir(); chdirErr == nil {
			runErr = c.Run(ctx)
		}
	}
	if runErr != nil {
		s.deps.Logger.Warn("launcher.checker.run_failed", "test", s.testName, "err", runErr)
	}

	checkErr := c.Check(ctx)
	res.Report = c.Report()
	return res, errors.Join(chdirErr, checkErr)
}

type reportingChecker interface {
	ports.Checker
	Report() domain.TestReport
}

func (s *SampleTest) chdirSampleDir() error {
	if s.opts.SampleTestDir == "" {
		return nil
	}
	if err := s.deps.Chdir(s.opts.SampleTestDir); err != nil {
		return &domain.OpError{Op: "launcher.chdir", Kind: domain.KindExecution, Path: s.opts.SampleTestDir, Err: err}
	}
	return nil
}

func (s *SampleTest) cleanup() {
	if s.compiledPath == "" || s.opts.KeepArtifacts {
		return
	}
	if err := os.Remove(s.compiledPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.deps.Logger.Warn("launcher.cleanup", "path", s.compiledPath, "err", err)
	}
}

func (s *SampleTest) resultsDir() string { return s.opts.ResultsDir }

func absPath(p string) string {
	if p == "" {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func (s *SampleTest) vars() map[string]string {
	return map[string]string{
		template.VarOutput:         s.resultsDir(),
		template.VarHost:           s.host,
		template.VarTestName:       s.testName,
		template.VarExperimentName: domain.ExperimentName(s.testName),
		template.VarImagePrefix:    s.opts.TargetImagePrefix,
	}
}

func tempFile(pattern string) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}
	name := f.Name()
	return name, f.Close()
}
