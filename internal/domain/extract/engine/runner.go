package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

const stderrTail = 512

// Runner executes an external command and returns its stdout. A failed
// command is reported as a *CommandError.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// CommandError carries the stderr of a failed command.
type CommandError struct {
	Name   string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("%s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Name, e.Err, tail(msg, stderrTail))
}

func (e *CommandError) Unwrap() error { return e.Err }

// ExecRunner runs binaries found on PATH. Cancelling ctx kills the child.
type ExecRunner struct {
	Logger *slog.Logger
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	attrs := []any{
		slog.String("cmd", name),
		slog.Int("args", len(args)),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		cerr := &CommandError{Name: name, Stderr: stderr.String(), Err: err}
		logger.Debug("command failed", append(attrs, slog.Any("error", cerr))...)
		return nil, cerr
	}
	logger.Debug("command finished", append(attrs, slog.Int("stdout_bytes", stdout.Len()))...)
	return stdout.Bytes(), nil
}

// Available reports whether a binary can be found on PATH.
func Available(bin string) bool {
	if bin == "" {
		return false
	}
	_, err := exec.LookPath(bin)
	return err == nil
}

// tail keeps the last n bytes, where tools print the actual failure.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
