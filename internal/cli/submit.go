package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/CarterFendley/pipelines/internal/domain"
	"github.com/CarterFendley/pipelines/internal/infra/kube"
	"github.com/CarterFendley/pipelines/internal/infra/logger"
	"github.com/CarterFendley/pipelines/internal/ports"
	"github.com/CarterFendley/pipelines/internal/usecase/launcher"
)

// defaultExperiment is used when neither --experiment nor the override variable is set.
const defaultExperiment = "Default"

func submitCmd() *cobra.Command {
	var (
		pkg           string
		experiment    string
		runName       string
		params        []string
		enableCaching bool
		wait          bool
		timeout       time.Duration
		host          string
		namespace     string
		pollInterval  time.Duration
	)

	c := &cobra.Command{
		Use:   "submit",
		Short: "Submit a compiled pipeline artifact as a run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			parameters, err := parseParams(params)
			if err != nil {
				return err
			}

			if host == "" {
				h, err := kube.NewResolver(kube.WithLogger(logger.L())).Resolve(ctx, namespace)
				if err != nil {
					return err
				}
				host = h
			}
			client := newAPIClient(host, namespace, pollInterval)

			name := experimentName(experiment)
			exp, err := client.EnsureExperiment(ctx, name)
			if err != nil {
				return err
			}

			req := ports.SubmitRequest{
				ExperimentID: exp.ID,
				DisplayName:  runName,
				PackagePath:  pkg,
				Parameters:   parameters,
			}
			if cmd.Flags().Changed("enable-caching") {
				req.EnableCaching = &enableCaching
			}

			run, err := client.SubmitRun(ctx, req)
			if err != nil {
				return err
			}

			th := DefaultTheme()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s (%s) in experiment %s\n", th.Title.Render("Run"), run.ID, run.DisplayName, name)
			fmt.Fprintln(out, th.Faint.Render(client.Host()+"/#/runs/details/"+run.ID))

			if !wait {
				return nil
			}
			done, err := client.WaitForRun(ctx, run.ID, timeout)
			if err != nil {
				return err
			}
			if done.State != domain.RunStateSucceeded {
				fmt.Fprintln(out, th.Fail.Render(string(done.State)))
				return fmt.Errorf("run %s finished as %s: %w", done.ID, done.State, domain.ErrCheckFailed)
			}
			fmt.Fprintln(out, th.Pass.Render(string(done.State)))
			return nil
		},
	}

	f := c.Flags()
	f.StringVar(&pkg, "package", "", "Compiled pipeline artifact (required)")
	f.StringVar(&experiment, "experiment", "", "Experiment name (defaults to $"+launcher.ExperimentOverrideEnv+" or "+defaultExperiment+")")
	f.StringVar(&runName, "run-name", "", "Run display name (defaults to the pipeline name)")
	f.StringArrayVar(&params, "param", nil, "Pipeline parameter as key=value; values are parsed as YAML scalars (repeatable)")
	f.BoolVar(&enableCaching, "enable-caching", true, "Override task caching for every task, including nested pipelines")
	f.BoolVar(&wait, "wait", false, "Wait for the run to finish")
	f.DurationVar(&timeout, "timeout", time.Duration(domain.DefaultTestTimeoutSeconds)*time.Second, "Maximum time to wait with --wait (0 waits forever)")
	f.StringVar(&host, "host", "", "API endpoint; discovered from cluster credentials when empty")
	f.StringVar(&namespace, "namespace", launcher.DefaultNamespace, "Namespace the orchestration backend runs in")
	f.DurationVar(&pollInterval, "poll-interval", 5*time.Second, "Interval between run status polls")

	_ = c.MarkFlagRequired("package")
	return c
}

func experimentName(flag string) string {
	if s := strings.TrimSpace(flag); s != "" {
		return s
	}
	if s := strings.TrimSpace(os.Getenv(launcher.ExperimentOverrideEnv)); s != "" {
		return s
	}
	return defaultExperiment
}

// parseParams turns key=value pairs into run parameters. Values are decoded as YAML
// scalars so numbers and booleans keep their type; quote them to force a string.
func parseParams(in []string) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for _, kv := range in {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, &domain.OpError{
				Op:   "cli.parse_param",
				Kind: domain.KindInvalidConfig,
				Err:  fmt.Errorf("expected key=value, got %q: %w", kv, domain.ErrInvalidConfig),
			}
		}

		var val any
		if err := yaml.Unmarshal([]byte(v), &val); err != nil || isCollection(val) {
			val = v
		}
		if val == nil {
			val = v
		}
		out[k] = val
	}
	return out, nil
}

func isCollection(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}
