// Package command wraps invocation of the external tools this CLI
// orchestrates (pg_dump, psql, docker, az, osascript). Everything that
// shells out goes through the Runner interface so tests can substitute
// canned process outcomes.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// ErrNotFound indicates the external binary is not installed or not on PATH.
var ErrNotFound = errors.New("command not found")

// ErrTimeout indicates the command exceeded its wall-clock budget.
var ErrTimeout = errors.New("command timed out")

// Command describes a single external-process invocation.
type Command struct {
	Name string
	Args []string
	// Env entries (KEY=VALUE) appended to the parent environment.
	Env []string
	// Timeout bounds the wall-clock run time. Zero means no limit.
	Timeout time.Duration
}

// Result captures the outcome of a completed invocation. A non-zero
// ExitCode is reported here rather than as an error, so callers decide
// how to surface tool failures.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands with os/exec. The zero value is ready to use.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

func (ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	proc := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	if len(cmd.Env) > 0 {
		proc.Env = append(os.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	err := proc.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	switch {
	case err == nil:
		return res, nil
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return res, fmt.Errorf("%w: %s after %s", ErrTimeout, cmd.Name, cmd.Timeout)
	case errors.Is(err, exec.ErrNotFound):
		return res, fmt.Errorf("%w: %s", ErrNotFound, cmd.Name)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, fmt.Errorf("run %s: %w", cmd.Name, err)
}
