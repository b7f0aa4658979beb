package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/CarterFendley/pipelines/internal/domain"
	"github.com/CarterFendley/pipelines/internal/infra/config"
	"github.com/CarterFendley/pipelines/internal/infra/httpclient"
	"github.com/CarterFendley/pipelines/internal/infra/junit"
	"github.com/CarterFendley/pipelines/internal/infra/kube"
	"github.com/CarterFendley/pipelines/internal/infra/logger"
	"github.com/CarterFendley/pipelines/internal/infra/pipelineapi"
	"github.com/CarterFendley/pipelines/internal/infra/runstore"
	"github.com/CarterFendley/pipelines/internal/infra/samplefinder"
	"github.com/CarterFendley/pipelines/internal/infra/toolchain"
	"github.com/CarterFendley/pipelines/internal/ports"
	"github.com/CarterFendley/pipelines/internal/usecase/launcher"
)

// launchEnv wires the infra adapters behind the launcher ports.
type launchEnv struct {
	sampleDir string
	deps      launcher.Deps
}

func newEnv(lf *launchFlags) (*launchEnv, error) {
	sampleDir, err := resolveSampleDir(lf.sampleTestDir, lf.testPath)
	if err != nil {
		return nil, err
	}

	// The launcher changes into the sample dir before records are saved.
	resultsDir, err := filepath.Abs(lf.resultsDir)
	if err != nil {
		return nil, fmt.Errorf("invalid results dir: %w", err)
	}
	lf.resultsDir = resultsDir

	log := logger.L()
	cmd := toolchain.NewExecCommander()
	cmd.Log = log
	tools := toolchain.DefaultTools()
	notebooks := toolchain.NewNotebook(cmd, tools)

	deps := launcher.Deps{
		Resolver:  kube.NewResolver(kube.WithLogger(log)),
		Configs:   config.NewLoader(filepath.Join(sampleDir, "config")),
		Compiler:  toolchain.NewCompiler(cmd, tools),
		Notebooks: notebooks,
		Runner:    notebooks,
		NewClient: func(host string) ports.PipelineClient {
			return newAPIClient(host, lf.namespace, lf.pollInterval)
		},
		Reports: junit.NewWriter(),
		Records: runstore.NewJSONStore(resultsDir,
			runstore.WithIndex(true),
			runstore.WithMasking(lf.maskArguments),
		),
		Logger:  log,
	}
	return &launchEnv{sampleDir: sampleDir, deps: deps}, nil
}

func newAPIClient(host, namespace string, poll time.Duration) *pipelineapi.Client {
	exec := httpclient.NewExecutor(httpclient.WithTimeout(httpclient.DefaultConfig().Timeout))
	return pipelineapi.New(host,
		pipelineapi.WithExecutor(exec),
		pipelineapi.WithNamespace(namespace),
		pipelineapi.WithPollInterval(poll),
		pipelineapi.WithLogger(logger.L()),
	)
}

// resolveSampleDir honours an explicit directory, otherwise searches upward from the
// working directory and then from the test path.
func resolveSampleDir(flag, testPath string) (string, error) {
	if s := strings.TrimSpace(flag); s != "" {
		abs, err := filepath.Abs(s)
		if err != nil {
			return "", fmt.Errorf("invalid sample-test dir: %w", err)
		}
		return abs, nil
	}

	finder := samplefinder.NewFinder()
	wd, err := os.Getwd()
	if err == nil {
		if root, ferr := finder.FindRoot(wd); ferr == nil {
			return root, nil
		}
	}
	if testPath != "" {
		if root, ferr := finder.FindRoot(testPath); ferr == nil {
			return root, nil
		}
	}
	return "", &domain.OpError{
		Op:   "cli.sample_test_dir",
		Kind: domain.KindNotFound,
		Err:  fmt.Errorf("sample-test directory not found, use --sample-test-dir: %w", domain.ErrNotFound),
	}
}
