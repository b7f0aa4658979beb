package toolchain

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/CarterFendley/pipelines/internal/domain"
	"github.com/CarterFendley/pipelines/internal/ports"
)

// Notebook prepares notebooks with papermill, converts them with nbconvert and
// runs the converted script with ipython.
type Notebook struct {
	cmd   Commander
	tools Tools
}

func NewNotebook(cmd Commander, tools Tools) *Notebook {
	return &Notebook{cmd: cmd, tools: tools.withDefaults()}
}

var (
	_ ports.NotebookPreparer = (*Notebook)(nil)
	_ ports.ScriptRunner     = (*Notebook)(nil)
)

// Prepare injects params into the notebook in place without executing it.
func (n *Notebook) Prepare(ctx context.Context, notebookPath string, params map[string]any) error {
	args := []string{notebookPath, notebookPath, "--prepare-only"}
	if len(params) > 0 {
		b, err := yaml.Marshal(params)
		if err != nil {
			return &domain.OpError{
				Op:   "toolchain.papermill",
				Kind: domain.KindInvalidConfig,
				Path: notebookPath,
				Err:  err,
			}
		}
		args = append(args, "--parameters_yaml", string(b))
	}
	return n.mustSucceed(ctx, "toolchain.papermill", notebookPath, n.tools.Papermill, args...)
}

// ConvertToScript writes <name>.py next to <name>.ipynb.
func (n *Notebook) ConvertToScript(ctx context.Context, notebookPath string) (string, error) {
	if err := n.mustSucceed(ctx, "toolchain.nbconvert", notebookPath,
		n.tools.Jupyter, "nbconvert", "--to", "python", notebookPath); err != nil {
		return "", err
	}
	return strings.TrimSuffix(notebookPath, domain.NotebookExt) + domain.ScriptExt, nil
}

func (n *Notebook) RunScript(ctx context.Context, scriptPath string) (int, error) {
	return n.cmd.Run(ctx, n.tools.IPython, scriptPath)
}

func (n *Notebook) mustSucceed(ctx context.Context, op, path, name string, args ...string) error {
	code, err := n.cmd.Run(ctx, name, args...)
	if err != nil {
		return &domain.OpError{Op: op, Kind: domain.KindExecution, Path: path, Err: err}
	}
	if code != 0 {
		return &domain.OpError{
			Op:   op,
			Kind: domain.KindExecution,
			Path: path,
			Err:  fmt.Errorf("%s exited with code %d", name, code),
		}
	}
	return nil
}
