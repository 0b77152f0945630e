// Package errors provides centralized error handling for gitpulse.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
var (
	// ErrSpawnFailed indicates that an external tool could not be started,
	// typically because the executable was not found.
	ErrSpawnFailed = errors.New("process could not be started")

	// ErrCommandFailed indicates that a process ran and exited with a non-zero code.
	ErrCommandFailed = errors.New("command failed")

	// ErrGitOperation indicates that a git command failed and the failure was
	// not recognized as an expected condition.
	ErrGitOperation = errors.New("git operation failed")

	// ErrNotGitRepo indicates the path is not a git repository.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrGitNotFound indicates the git executable could not be located.
	ErrGitNotFound = errors.New("git executable not found")

	// ErrVersionUnknown indicates the git version output could not be parsed.
	ErrVersionUnknown = errors.New("git version could not be determined")

	// ErrUnsupportedEncoding indicates an output encoding label is not recognized.
	ErrUnsupportedEncoding = errors.New("unsupported output encoding")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrNotifierClosed indicates an operation on a disposed repository notifier.
	ErrNotifierClosed = errors.New("repository notifier is closed")

	// ErrWatcherClosed indicates the file system watcher has been shut down.
	ErrWatcherClosed = errors.New("file system watcher is closed")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidGit indicates an invalid git configuration value.
	ErrConfigInvalidGit = errors.New("invalid git configuration")

	// ErrConfigInvalidWatch indicates an invalid watch configuration value.
	ErrConfigInvalidWatch = errors.New("invalid watch configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrInvalidArgument indicates that an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCommandNotConfigured indicates that a fake command was not configured in tests.
	ErrCommandNotConfigured = errors.New("command not configured")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
