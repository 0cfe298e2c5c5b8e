// Package runner executes the external tools fbuild drives (git, flutter).
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Runner runs external commands. Output captures stdout for queries; Run streams
// stdout/stderr through to the user for long-running tool invocations.
type Runner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	Run(ctx context.Context, name string, args ...string) error
}

// Exec is the os/exec backed Runner. Commands inherit the process environment.
type Exec struct {
	// Dir is the working directory for every command. Empty means the current directory.
	Dir string
	// Stdout and Stderr receive streamed output from Run; default to os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// NewExec returns an Exec rooted at dir that logs command lines at debug level.
func NewExec(dir string, logger *slog.Logger) *Exec {
	return &Exec{Dir: dir, Logger: logger}
}

// Output runs the command and returns its standard output. On a non-zero exit the
// returned error carries the command's stderr.
func (e *Exec) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := e.command(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return out, fmt.Errorf("%s: %w: %s", CommandLine(name, args...), err, msg)
		}
		return out, fmt.Errorf("%s: %w", CommandLine(name, args...), err)
	}
	return out, nil
}

// Run runs the command with its output passed through.
func (e *Exec) Run(ctx context.Context, name string, args ...string) error {
	cmd := e.command(ctx, name, args...)
	cmd.Stdout = e.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = e.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", CommandLine(name, args...), err)
	}
	return nil
}

func (e *Exec) command(ctx context.Context, name string, args ...string) *exec.Cmd {
	if e.Logger != nil {
		e.Logger.Debug("exec", "cmd", CommandLine(name, args...), "dir", e.Dir)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = e.Dir
	return cmd
}

// ExitCode reports the exit status of a command that ran and exited non-zero.
// The second result is false when err did not come from a process exit
// (binary not found, context cancelled before start, and so on).
func ExitCode(err error) (int, bool) {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), true
	}
	return 0, false
}

// CommandLine renders a command for log and error messages.
func CommandLine(name string, args ...string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
