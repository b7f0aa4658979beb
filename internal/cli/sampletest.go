package cli

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/CarterFendley/pipelines/internal/usecase/launcher"
)

type launchFlags struct {
	testPath          string
	resultsDir        string
	function          string
	host              string
	targetImagePrefix string
	namespace         string
	sampleTestDir     string
	pollInterval      time.Duration
	keepArtifacts     bool
	maskArguments     bool
}

func (f *launchFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.testPath, "test-path", "", "Path of the sample source: .py or .ipynb (required)")
	fs.StringVar(&f.resultsDir, "results-dir", "", "Directory receiving the junit report and run record (required)")
	fs.StringVar(&f.function, "function", "", "Pipeline function to compile (optional)")
	fs.StringVar(&f.host, "host", "", "API endpoint; discovered from cluster credentials when empty")
	fs.StringVar(&f.targetImagePrefix, "target-image-prefix", "", "Image prefix exposed to sample arguments as {{target_image_prefix}}")
	fs.StringVar(&f.namespace, "namespace", launcher.DefaultNamespace, "Namespace the orchestration backend runs in")
	fs.StringVar(&f.sampleTestDir, "sample-test-dir", "", "Sample-test directory holding config/ (autodetected if omitted)")
	fs.DurationVar(&f.pollInterval, "poll-interval", 5*time.Second, "Interval between run status polls")
	fs.BoolVar(&f.keepArtifacts, "keep-artifacts", false, "Keep the compiled pipeline artifact after the run")
	fs.BoolVar(&f.maskArguments, "mask-arguments", true, "Mask credential-like arguments in the run record")
}

func (f *launchFlags) options(sampleDir string) launcher.Options {
	return launcher.Options{
		TestPath:          f.testPath,
		ResultsDir:        f.resultsDir,
		Function:          f.function,
		Host:              f.host,
		TargetImagePrefix: f.targetImagePrefix,
		Namespace:         f.namespace,
		SampleTestDir:     sampleDir,
		KeepArtifacts:     f.keepArtifacts,
	}
}

func markLaunchRequired(c *cobra.Command) {
	_ = c.MarkFlagRequired("test-path")
	_ = c.MarkFlagRequired("results-dir")
}

func sampleTestCmd() *cobra.Command {
	parent := &cobra.Command{
		Use:   "sample_test",
		Short: "Launch a pipeline sample test",
	}

	var lf launchFlags
	run := &cobra.Command{
		Use:   "run_test",
		Short: "Compile the sample, submit it and check the outcome",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := newEnv(&lf)
			if err != nil {
				return err
			}
			st := launcher.NewSampleTest(lf.options(env.sampleDir), env.deps)
			res, err := st.RunTest(cmd.Context())
			printSummary(cmd.OutOrStdout(), DefaultTheme(), res)
			return err
		},
	}
	lf.bind(run.Flags())
	markLaunchRequired(run)

	parent.AddCommand(run)
	return parent
}

func componentTestCmd() *cobra.Command {
	parent := &cobra.Command{
		Use:   "component_test",
		Short: "Launch a sample test with locally built component images substituted",
	}

	var lf launchFlags
	var images launcher.ComponentImages
	run := &cobra.Command{
		Use:   "run_test",
		Short: "Compile the sample, inject images, submit it and check the outcome",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := newEnv(&lf)
			if err != nil {
				return err
			}
			ct := launcher.NewComponentTest(lf.options(env.sampleDir), images, env.deps)
			res, err := ct.RunTest(cmd.Context())
			printSummary(cmd.OutOrStdout(), DefaultTheme(), res)
			return err
		},
	}
	lf.bind(run.Flags())
	run.Flags().StringVar(&images.GCP, "gcp-image", "", "Replacement for the dataproc gcp image (xgboost_training_cm only)")
	run.Flags().StringVar(&images.ConfusionMatrix, "local-confusionmatrix-image", "", "Replacement for the local confusion-matrix image")
	run.Flags().StringVar(&images.ROC, "local-roc-image", "", "Replacement for the local roc image")
	markLaunchRequired(run)

	parent.AddCommand(run)
	return parent
}
