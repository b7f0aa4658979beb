// Package scaffold creates sample-test config files from embedded templates.
package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/CarterFendley/pipelines/internal/app/template"
	"github.com/CarterFendley/pipelines/internal/domain"
)

//go:embed templates/*
var templatesFS embed.FS

const testTemplate = "templates/test.config.yaml.tmpl"

// Initializer writes the config directory of a sample-test dir.
type Initializer struct {
	Force bool
}

func NewInitializer(force bool) *Initializer {
	return &Initializer{Force: force}
}

// Init makes sure <sampleDir>/config holds the shared default and schema configs and,
// for every name, a per-test config stub. Existing files are kept unless Force is set.
// It returns the files it wrote.
func (i *Initializer) Init(sampleDir string, testNames ...string) ([]string, error) {
	cfgDir := filepath.Join(filepath.Clean(sampleDir), "config")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return nil, &domain.OpError{Op: "scaffold.mkdir", Kind: domain.KindExecution, Path: cfgDir, Err: err}
	}

	var written []string
	err := fs.WalkDir(templatesFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || p == testTemplate {
			return nil
		}
		b, err := fs.ReadFile(templatesFS, p)
		if err != nil {
			return err
		}
		dst := filepath.Join(cfgDir, strings.TrimPrefix(p, "templates/"))
		ok, err := i.write(dst, b)
		if ok {
			written = append(written, dst)
		}
		return err
	})
	if err != nil {
		return written, &domain.OpError{Op: "scaffold.init", Kind: domain.KindExecution, Path: cfgDir, Err: err}
	}

	tmpl, err := fs.ReadFile(templatesFS, testTemplate)
	if err != nil {
		return written, err
	}
	for _, name := range testNames {
		if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) {
			return written, &domain.OpError{
				Op:   "scaffold.init",
				Kind: domain.KindInvalidConfig,
				Err:  fmt.Errorf("invalid test name %q: %w", name, domain.ErrInvalidConfig),
			}
		}
		body, err := template.RenderString(string(tmpl), map[string]string{template.VarTestName: name})
		if err != nil {
			return written, err
		}
		dst := filepath.Join(cfgDir, name+".config.yaml")
		ok, err := i.write(dst, []byte(body))
		if err != nil {
			return written, &domain.OpError{Op: "scaffold.write", Kind: domain.KindExecution, Path: dst, Err: err}
		}
		if ok {
			written = append(written, dst)
		}
	}
	return written, nil
}

func (i *Initializer) write(dst string, b []byte) (bool, error) {
	if !i.Force {
		if _, err := os.Stat(dst); err == nil {
			return false, nil
		}
	}
	if err := os.WriteFile(dst, b, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
