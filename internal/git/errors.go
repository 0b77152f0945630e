// Package git runs git commands for gitpulse.
// This file defines the fatal command error and sentinel re-exports.
package git

import (
	"errors"
	"time"

	gperrors "github.com/mrz1836/gitpulse/internal/errors"
	"github.com/mrz1836/gitpulse/internal/process"
)

// ErrGitOperation is re-exported from internal/errors for convenience.
// Use errors.Is(err, ErrGitOperation) to check for classified git failures.
var ErrGitOperation = gperrors.ErrGitOperation

// ErrNotGitRepo is re-exported from internal/errors for convenience.
var ErrNotGitRepo = gperrors.ErrNotGitRepo

// CommandError is a git failure that matched no benign rule. Its message is
// the original process error, unchanged.
type CommandError struct {
	Category ErrorType
	Dir      string
	Elapsed  time.Duration
	Err      *process.ExitError
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return e.Err.Error()
}

// Unwrap exposes the process error and ErrGitOperation.
func (e *CommandError) Unwrap() []error {
	return []error{e.Err, gperrors.ErrGitOperation}
}

// ExitCode returns the git exit status.
func (e *CommandError) ExitCode() int {
	return e.Err.ExitCode
}

// Stderr returns what git wrote to stderr.
func (e *CommandError) Stderr() string {
	return e.Err.Stderr
}

// IsCategory reports whether err is a *CommandError of the given category.
func IsCategory(err error, category ErrorType) bool {
	var cmdErr *CommandError
	return errors.As(err, &cmdErr) && cmdErr.Category == category
}
