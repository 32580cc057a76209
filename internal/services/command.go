package services

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// CommandResult captures the outcome of one external tool invocation.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner abstracts subprocess execution for testability. Implementations
// must honor ctx cancellation; callers supply timeouts through the context.
type CommandRunner interface {
	Run(ctx context.Context, dir, binary string, args ...string) (CommandResult, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir, binary string, args ...string) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}
	if err != nil {
		if ctx.Err() != nil {
			return result, ErrTimeout
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return result, err
		}
		return result, err
	}
	return result, nil
}

// RunWithTimeout wraps runner.Run with a wall-clock deadline. A zero timeout
// runs without one.
func RunWithTimeout(ctx context.Context, runner CommandRunner, timeout time.Duration, dir, binary string, args ...string) (CommandResult, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return runner.Run(ctx, dir, binary, args...)
}

// FirstOutputLine returns the first non-empty line of combined output, for
// concise log messages about tool failures.
func (r CommandResult) FirstOutputLine() string {
	for _, chunk := range []string{r.Stderr, r.Stdout} {
		for _, line := range strings.Split(chunk, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
