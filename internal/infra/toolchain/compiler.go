package toolchain

import (
	"context"
	"fmt"

	"github.com/CarterFendley/pipelines/internal/domain"
	"github.com/CarterFendley/pipelines/internal/ports"
)

// Compiler invokes `kfp dsl compile`.
type Compiler struct {
	cmd   Commander
	tools Tools
}

func NewCompiler(cmd Commander, tools Tools) *Compiler {
	return &Compiler{cmd: cmd, tools: tools.withDefaults()}
}

var _ ports.PipelineCompiler = (*Compiler)(nil)

func (c *Compiler) Compile(ctx context.Context, sourcePath, outputPath, function string) error {
	args := []string{"dsl", "compile", "--py", sourcePath, "--output", outputPath}
	if function != "" {
		args = append(args, "--function", function)
	}

	code, err := c.cmd.Run(ctx, c.tools.KFP, args...)
	if err != nil {
		return &domain.OpError{
			Op:   "toolchain.compile",
			Kind: domain.KindCompile,
			Path: sourcePath,
			Err:  fmt.Errorf("%w: %w", domain.ErrCompileFailed, err),
		}
	}
	if code != 0 {
		return &domain.OpError{
			Op:   "toolchain.compile",
			Kind: domain.KindCompile,
			Path: sourcePath,
			Err:  fmt.Errorf("%w: %s exited with code %d", domain.ErrCompileFailed, c.tools.KFP, code),
		}
	}
	return nil
}
