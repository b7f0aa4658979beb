package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/CarterFendley/pipelines/internal/infra/config"
	"github.com/CarterFendley/pipelines/internal/infra/schema"
)

func validateCmd() *cobra.Command {
	var sampleTestDir string

	c := &cobra.Command{
		Use:   "validate-config [test-name...]",
		Short: "Validate the default config and named per-test configs against the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveSampleDir(sampleTestDir, "")
			if err != nil {
				return err
			}

			loader := config.NewLoader(filepath.Join(dir, "config"))
			paths := []string{filepath.Join(loader.Dir(), config.DefaultConfigFile)}
			for _, name := range args {
				paths = append(paths, loader.TestConfigPath(name))
			}

			th := DefaultTheme()
			out := cmd.OutOrStdout()
			failed := 0
			for _, p := range paths {
				if err := loader.Validate(p); err != nil {
					failed++
					fmt.Fprintf(out, "%s %s\n", th.Fail.Render("FAIL"), p)
					var ve *schema.ValidationError
					if errors.As(err, &ve) {
						for _, v := range ve.Violations {
							fmt.Fprintf(out, "  - %s\n", v)
						}
					} else {
						fmt.Fprintf(out, "  - %v\n", err)
					}
					continue
				}
				fmt.Fprintf(out, "%s %s\n", th.Pass.Render("OK"), p)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d config file(s) invalid", failed, len(paths))
			}
			return nil
		},
	}

	c.Flags().StringVar(&sampleTestDir, "sample-test-dir", "", "Sample-test directory holding config/ (autodetected if omitted)")
	return c
}
