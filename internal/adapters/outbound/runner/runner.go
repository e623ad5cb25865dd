// Package runner executes external commands as argument vectors.
//
// Every call is bounded by a timeout and every failure is folded into a
// domain.CommandResult, so callers never handle exec errors directly.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abdidvp/harmonizer/internal/domain"
)

// Standard timeouts for the commands harmonizer runs.
const (
	InspectTimeout  = domain.InspectTimeout
	ListTimeout     = domain.ListTimeout
	ReleaseTimeout  = 2 * time.Second
	VenvTimeout     = domain.VenvTimeout
	InstallTimeout  = domain.InstallTimeout
	defaultTimeout  = 30 * time.Second
	exitCodeUnknown = -1
)

// Exec implements domain.CommandRunner with os/exec.
type Exec struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Exec {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exec{log: log}
}

// Run executes name with args. A zero timeout uses a 30 second default.
func (e *Exec) Run(ctx context.Context, timeout time.Duration, name string, args ...string) domain.CommandResult {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := domain.CommandResult{
		Success:  err == nil,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode(cmd, err),
	}
	if err != nil {
		res.Stderr = normalizeError(ctx, err, name, timeout, res.Stderr)
	}

	e.log.Debug("command executed",
		zap.String("name", name),
		zap.Strings("args", args),
		zap.Duration("elapsed", time.Since(start)),
		zap.Bool("success", res.Success),
		zap.Int("exit_code", res.ExitCode),
	)
	return res
}

// FirstLine returns the first non-blank line of s, trimmed.
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

func normalizeError(ctx context.Context, err error, name string, timeout time.Duration, stderr string) string {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Sprintf("Command timed out after %d seconds", int(timeout.Seconds()))
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return fmt.Sprintf("Command not found: %s", name)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Sprintf("Permission denied executing: %s", name)
	}
	if msg := strings.TrimSpace(stderr); msg != "" {
		return msg
	}
	return err.Error()
}

func exitCode(cmd *exec.Cmd, err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	return exitCodeUnknown
}
