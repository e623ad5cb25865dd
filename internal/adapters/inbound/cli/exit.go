package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/abdidvp/harmonizer/internal/domain"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitIssues      = 1
	ExitUsage       = 2
	ExitInterrupted = 130
)

// ExitError carries the process exit code for a command outcome. Err may be
// nil when the command already reported everything it had to say.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// Silent reports whether there is no message worth printing.
func (e *ExitError) Silent() bool { return e.Err == nil }

func usageError(err error) error {
	return &ExitError{Code: ExitUsage, Err: err}
}

// ExitCode maps an Execute error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exit *ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	switch {
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, domain.ErrInvalidProject):
		return ExitUsage
	default:
		return ExitIssues
	}
}

func interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &ExitError{Code: ExitInterrupted, Err: fmt.Errorf("interrupted: %w", err)}
	}
	return nil
}
