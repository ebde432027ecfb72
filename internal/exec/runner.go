package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	apperrors "github.com/satindergrewal/lofistudio/internal/errors"
)

// Result holds command execution output
type Result struct {
	Stdout   string // empty when stdout was streamed to a caller's writer
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner executes external commands with context support
type Runner struct {
	Dir string // working directory, empty for the current one
}

// NewRunner creates a new command runner
func NewRunner(dir string) *Runner {
	return &Runner{Dir: dir}
}

// LookPath resolves a tool name, mapping a missing binary to
// ErrToolNotInstalled.
func (r *Runner) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, apperrors.ErrToolNotInstalled)
	}
	return path, nil
}

// Run executes a command and captures its output
func (r *Runner) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	return r.execute(ctx, nil, nil, name, args...)
}

// RunWithIO feeds stdin to the command and streams its stdout to out.
// Either may be nil.
func (r *Runner) RunWithIO(ctx context.Context, stdin io.Reader, out io.Writer, name string, args ...string) (*Result, error) {
	return r.execute(ctx, stdin, out, name, args...)
}

// execute runs a command and captures output
func (r *Runner) execute(ctx context.Context, stdin io.Reader, out io.Writer, name string, args ...string) (*Result, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	cmd.Stdin = stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if out != nil {
		cmd.Stdout = out
	}
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if errors.Is(err, exec.ErrNotFound) {
		return result, fmt.Errorf("%s: %w", name, apperrors.ErrToolNotInstalled)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	}

	if err != nil {
		return result, fmt.Errorf("command %s failed: %w", name, err)
	}

	return result, nil
}
