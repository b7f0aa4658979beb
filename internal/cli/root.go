package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/CarterFendley/pipelines/internal/infra/logger"
)

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, DefaultTheme().Fail.Render(userMessage(err)))
		stop()
		os.Exit(1)
	}
}

type rootFlags struct {
	logLevel  string
	logFormat string
	logFile   string
}

func newRootCmd() *cobra.Command {
	var rf rootFlags
	var cleanup func() error

	cmd := &cobra.Command{
		Use:           "sampletest",
		Short:         "Compile, submit and check pipeline samples",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c, err := logger.Setup(logger.Config{
				Level:  rf.logLevel,
				Format: rf.logFormat,
				Output: cmd.ErrOrStderr(),
				File:   rf.logFile,
			})
			if err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			cleanup = c
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if cleanup != nil {
				return cleanup()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&rf.logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().StringVar(&rf.logFormat, "log-format", "text", "Log format: text|json")
	cmd.PersistentFlags().StringVar(&rf.logFile, "log-file", "", "Also write logs to this file")

	cmd.AddCommand(sampleTestCmd())
	cmd.AddCommand(componentTestCmd())
	cmd.AddCommand(validateCmd())
	cmd.AddCommand(initConfigCmd())
	cmd.AddCommand(submitCmd())
	cmd.AddCommand(versionCmd())
	return cmd
}
