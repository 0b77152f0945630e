package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/mrz1836/gitpulse/internal/process"
)

// RunHandler produces the outcome for one fake process invocation.
type RunHandler func(spec process.Spec) (*process.Result, error)

// FakeRunner is a process.Runner that records every spawn and answers with a
// handler. It can be blocked so tests can observe in-flight commands.
type FakeRunner struct {
	mu      sync.Mutex
	handler RunHandler
	specs   []process.Spec
	gate    chan struct{}
	started chan process.Spec
}

// NewFakeRunner creates a runner answering with handler. A nil handler
// succeeds with empty output.
func NewFakeRunner(handler RunHandler) *FakeRunner {
	return &FakeRunner{
		handler: handler,
		started: make(chan process.Spec, 64),
	}
}

// Run implements process.Runner.
func (f *FakeRunner) Run(ctx context.Context, spec process.Spec) (*process.Result, error) {
	f.mu.Lock()
	f.specs = append(f.specs, spec)
	gate := f.gate
	handler := f.handler
	f.mu.Unlock()

	select {
	case f.started <- spec:
	default:
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if handler == nil {
		return &process.Result{}, nil
	}
	return handler(spec)
}

// Block makes subsequent Run calls wait until Release is called.
func (f *FakeRunner) Block() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = make(chan struct{})
}

// Release unblocks every Run call waiting since the last Block.
func (f *FakeRunner) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gate != nil {
		close(f.gate)
		f.gate = nil
	}
}

// Started receives the process.Spec of each spawn as it begins.
func (f *FakeRunner) Started() <-chan process.Spec {
	return f.started
}

// Calls returns a copy of the recorded specs.
func (f *FakeRunner) Calls() []process.Spec {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]process.Spec, len(f.specs))
	copy(out, f.specs)
	return out
}

// CallCount returns the number of spawns so far.
func (f *FakeRunner) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.specs)
}

// Output returns a successful result with the given stdout.
func Output(stdout string) (*process.Result, error) {
	return &process.Result{Stdout: []byte(stdout), Text: stdout}, nil
}

// Failure returns a failed result whose error mirrors what process.ExecRunner
// reports for a non-zero exit.
func Failure(spec process.Spec, exitCode int, stderr string) (*process.Result, error) {
	res := &process.Result{ExitCode: exitCode, Stderr: []byte(stderr)}
	return res, &process.ExitError{
		ExitCode:    exitCode,
		Stderr:      stderr,
		CommandLine: strings.TrimSpace(spec.Path + " " + strings.Join(spec.Args, " ")),
		Dir:         spec.Dir,
	}
}

// Subcommand returns the first argument after any leading -c key=value pairs.
func Subcommand(spec process.Spec) string {
	args := spec.Args
	for len(args) >= 2 && args[0] == "-c" {
		args = args[2:]
	}
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// Ensure FakeRunner implements process.Runner.
var _ process.Runner = (*FakeRunner)(nil)
