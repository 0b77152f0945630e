// Package process spawns external tools and captures their output.
//
// The runner knows nothing about the commands it starts. It writes optional
// stdin, captures stdout and stderr, decodes stdout with the requested
// encoding and turns a non-zero exit into an *ExitError. Failures to start the
// executable are reported as *SpawnError so callers can tell "the tool is
// missing" apart from "the tool ran and failed".
package process

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/gitpulse/internal/logging"
)

// Spec describes a single subprocess invocation.
type Spec struct {
	// Path is the executable to run. It may be a bare name resolved via PATH.
	Path string

	// Args are the arguments passed to the executable.
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Stdin is written to the process before its stdin is closed. Nil leaves stdin empty.
	Stdin []byte

	// Env holds KEY=VALUE entries layered over the inherited environment.
	// Later entries win over earlier ones and over inherited values.
	Env []string

	// Encoding selects how stdout is decoded (see EncodingUTF8, EncodingBinary).
	Encoding string
}

// Result is the captured outcome of a subprocess that ran to completion.
type Result struct {
	// ExitCode is the process exit status.
	ExitCode int

	// Stdout is the raw captured standard output.
	Stdout []byte

	// Stderr is the raw captured standard error.
	Stderr []byte

	// Text is Stdout decoded with the requested encoding. It is empty when the
	// encoding is EncodingBinary.
	Text string

	// Elapsed is the wall time between start and exit.
	Elapsed time.Duration
}

// Runner runs subprocesses.
type Runner interface {
	// Run spawns the process described by spec and waits for it to exit.
	// A non-zero exit returns both the Result and an *ExitError.
	Run(ctx context.Context, spec Spec) (*Result, error)
}

// ExecRunner implements Runner with os/exec.
type ExecRunner struct {
	logger zerolog.Logger
}

// NewExecRunner creates a runner that logs spawn failures to logger.
func NewExecRunner(logger zerolog.Logger) *ExecRunner {
	return &ExecRunner{logger: logger.With().Str("component", "process").Logger()}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, spec Spec) (*Result, error) {
	dec, err := decoderFor(spec.Encoding)
	if err != nil {
		return nil, err
	}

	if spec.Path == "" {
		return nil, &SpawnError{Path: spec.Path, Args: spec.Args, Dir: spec.Dir, Err: exec.ErrNotFound}
	}

	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...) //#nosec G204 -- executable and args come from the caller's request
	cmd.Dir = spec.Dir
	cmd.Env = mergeEnv(os.Environ(), spec.Env)
	if spec.Stdin != nil {
		cmd.Stdin = bytes.NewReader(spec.Stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if runErr != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}

	result := &Result{
		Stdout:  stdout.Bytes(),
		Stderr:  stderr.Bytes(),
		Elapsed: elapsed,
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			r.logger.Debug().
				Err(runErr).
				Str("cmd", logging.RedactCommandLine(spec.Path, spec.Args)).
				Str("dir", spec.Dir).
				Msg("process could not be started")
			return nil, &SpawnError{Path: spec.Path, Args: spec.Args, Dir: spec.Dir, Err: runErr}
		}
		result.ExitCode = exitErr.ExitCode()
	}

	if result.Text, err = dec.decode(result.Stdout); err != nil {
		return nil, err
	}

	if result.ExitCode != 0 {
		return result, newExitError(spec, result)
	}
	return result, nil
}

// mergeEnv layers overrides on top of base. A key set in overrides replaces
// any entry for the same key in base so the child never sees duplicates.
func mergeEnv(base, overrides []string) []string {
	if len(overrides) == 0 {
		return base
	}

	keys := make(map[string]struct{}, len(overrides))
	for _, kv := range overrides {
		keys[envKey(kv)] = struct{}{}
	}

	merged := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		if _, ok := keys[envKey(kv)]; ok {
			continue
		}
		merged = append(merged, kv)
	}

	// Last override for a key wins.
	seen := make(map[string]int, len(overrides))
	for _, kv := range overrides {
		k := envKey(kv)
		if i, ok := seen[k]; ok {
			merged[i] = kv
			continue
		}
		seen[k] = len(merged)
		merged = append(merged, kv)
	}
	return merged
}

func envKey(kv string) string {
	for i := 0; i < len(kv); i++ {
		if kv[i] == '=' {
			return kv[:i]
		}
	}
	return kv
}

// Ensure ExecRunner implements Runner.
var _ Runner = (*ExecRunner)(nil)
