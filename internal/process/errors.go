package process

import (
	"fmt"
	"strings"
	"time"

	gperrors "github.com/mrz1836/gitpulse/internal/errors"
	"github.com/mrz1836/gitpulse/internal/logging"
)

// SpawnError reports that an executable could not be started.
type SpawnError struct {
	Path string
	Args []string
	Dir  string
	Err  error
}

// Error implements the error interface.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s in %q: %v", e.Path, e.Dir, e.Err)
}

// Unwrap exposes both ErrSpawnFailed and the underlying cause.
func (e *SpawnError) Unwrap() []error {
	return []error{gperrors.ErrSpawnFailed, e.Err}
}

// ExitError reports a process that ran and exited with a non-zero status.
// Stdout and Stderr hold whatever the process wrote before exiting.
type ExitError struct {
	ExitCode    int
	Stdout      string
	Stderr      string
	CommandLine string
	Dir         string
	Elapsed     time.Duration
}

func newExitError(spec Spec, result *Result) *ExitError {
	stdout := result.Text
	if stdout == "" && len(result.Stdout) > 0 {
		stdout = string(result.Stdout)
	}
	return &ExitError{
		ExitCode:    result.ExitCode,
		Stdout:      stdout,
		Stderr:      string(result.Stderr),
		CommandLine: logging.RedactCommandLine(spec.Path, spec.Args),
		Dir:         spec.Dir,
		Elapsed:     result.Elapsed,
	}
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	detail := strings.TrimSpace(e.Stderr)
	if detail == "" {
		detail = strings.TrimSpace(e.Stdout)
	}
	if detail == "" {
		return fmt.Sprintf("%s exited with code %d", e.CommandLine, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.CommandLine, e.ExitCode, detail)
}

// Unwrap allows errors.Is(err, ErrCommandFailed).
func (e *ExitError) Unwrap() error {
	return gperrors.ErrCommandFailed
}

// Message returns the process output used to recognize known failure conditions.
func (e *ExitError) Message() string {
	switch {
	case e.Stderr == "":
		return e.Stdout
	case e.Stdout == "":
		return e.Stderr
	default:
		return e.Stderr + "\n" + e.Stdout
	}
}
