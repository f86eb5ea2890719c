// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package shell runs external compiler commands through a shell and expands
// placeholder templates into safely quoted command lines.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// waitDelay bounds how long Run waits for output pipes after the process is
// killed, since grandchildren may keep them open.
const waitDelay = 2 * time.Second

// DefaultShell is the interpreter used when none is configured.
var DefaultShell = []string{"sh", "-c"}

// Result holds the outcome of a finished command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Success reports whether the command exited with status 0.
func (r Result) Success() bool { return r.ExitCode == 0 }

// Executor runs a shell command line in a working directory.
//
// A non-zero exit status is reported through Result.ExitCode, not as an
// error. Execute returns an error only when the process could not be
// started or was killed by context cancellation or timeout.
type Executor interface {
	Execute(ctx context.Context, command, dir string) (Result, error)
}

// process abstracts process creation for testing.
type process interface {
	Run(ctx context.Context, name string, args []string, dir string, stdout, stderr *bytes.Buffer) error
}

// osProcess is the production process backed by os/exec.
type osProcess struct{}

func (osProcess) Run(ctx context.Context, name string, args []string, dir string, stdout, stderr *bytes.Buffer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = nil
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay
	return cmd.Run()
}

// Runner implements Executor by handing the command line to a shell
// interpreter such as "sh -c".
type Runner struct {
	shell   []string
	timeout time.Duration
	proc    process
}

// NewRunner creates a Runner. An empty shell selects DefaultShell; a zero
// timeout disables the per-command deadline.
func NewRunner(shell []string, timeout time.Duration) *Runner {
	if len(shell) == 0 {
		shell = DefaultShell
	}
	return &Runner{
		shell:   append([]string(nil), shell...),
		timeout: timeout,
		proc:    osProcess{},
	}
}

// Execute runs command in dir, buffering stdout and stderr until exit.
func (r *Runner) Execute(ctx context.Context, command, dir string) (Result, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	args := make([]string, 0, len(r.shell))
	args = append(args, r.shell[1:]...)
	args = append(args, command)

	var stdout, stderr bytes.Buffer
	start := time.Now()
	err := r.proc.Run(ctx, r.shell[0], args, dir, &stdout, &stderr)
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err == nil {
		return res, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		res.ExitCode = -1
		return res, fmt.Errorf("running %q: %w", command, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}

	res.ExitCode = -1
	return res, fmt.Errorf("starting %s: %w", r.shell[0], err)
}
