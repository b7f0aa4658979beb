// Package toolchain drives the external pipeline SDK and notebook tooling as subprocesses.
package toolchain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Commander runs a command to completion. err is only set when the command could not
// be started or was interrupted; a non-zero exit is reported through exitCode.
type Commander interface {
	Run(ctx context.Context, name string, args ...string) (exitCode int, err error)
}

// ExecCommander runs commands with os/exec, streaming output to the given writers.
type ExecCommander struct {
	Dir    string
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
	Log    *slog.Logger
}

func NewExecCommander() *ExecCommander {
	return &ExecCommander{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Log:    slog.Default(),
	}
}

func (c *ExecCommander) Run(ctx context.Context, name string, args ...string) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = c.Dir
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	if c.Log != nil {
		c.Log.Debug("toolchain.exec", "cmd", name, "args", strings.Join(args, " "))
	}

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return exitErr.ExitCode(), nil
	}
	if ctx.Err() != nil {
		return -1, ctx.Err()
	}
	return -1, err
}
