package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CarterFendley/pipelines/internal/infra/samplefinder"
	"github.com/CarterFendley/pipelines/internal/infra/scaffold"
)

func initConfigCmd() *cobra.Command {
	var sampleTestDir string
	var force bool

	c := &cobra.Command{
		Use:   "init-config [test-name...]",
		Short: "Create the config directory and per-test config stubs",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := strings.TrimSpace(sampleTestDir)
			if dir == "" {
				found, err := resolveSampleDir("", "")
				if err != nil {
					dir = samplefinder.DefaultSubdir
				} else {
					dir = found
				}
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return err
			}

			written, err := scaffold.NewInitializer(force).Init(abs, args...)
			th := DefaultTheme()
			for _, p := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", th.Pass.Render("wrote"), p)
			}
			if err != nil {
				return err
			}
			if len(written) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), th.Faint.Render("nothing to do (use --force to overwrite)"))
			}
			return nil
		},
	}

	c.Flags().StringVar(&sampleTestDir, "sample-test-dir", "", "Sample-test directory (autodetected, else "+samplefinder.DefaultSubdir+")")
	c.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	return c
}
