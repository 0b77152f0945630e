// Package git runs git commands for gitpulse.
// This file provides the command execution engine.
package git

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/gitpulse/internal/clock"
	"github.com/mrz1836/gitpulse/internal/constants"
	"github.com/mrz1836/gitpulse/internal/ctxutil"
	gperrors "github.com/mrz1836/gitpulse/internal/errors"
	"github.com/mrz1836/gitpulse/internal/logging"
	"github.com/mrz1836/gitpulse/internal/process"
)

// Executor runs git requests. Concurrent requests with the same Request.Key
// share one process; each caller then applies its own error policy to the
// shared outcome.
type Executor struct {
	runner        process.Runner
	registry      *Registry
	classifier    *ErrorClassifier
	gate          *VersionGate
	clock         clock.Clock
	logger        zerolog.Logger
	slowThreshold time.Duration
	extraConfigs  []string
	environment   map[string]string
	goos          string
	locate        Locator
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithClock sets the clock used to time calls.
func WithClock(c clock.Clock) ExecutorOption {
	return func(e *Executor) { e.clock = c }
}

// WithSlowCallThreshold sets the duration above which calls are logged as slow.
func WithSlowCallThreshold(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.slowThreshold = d }
}

// WithExtraConfigs adds key=value pairs passed as -c options to every call.
func WithExtraConfigs(configs []string) ExecutorOption {
	return func(e *Executor) { e.extraConfigs = append([]string(nil), configs...) }
}

// WithEnvironment adds environment variables to every call.
func WithEnvironment(env map[string]string) ExecutorOption {
	return func(e *Executor) { e.environment = env }
}

// WithLocator overrides how the git executable is found.
func WithLocator(l Locator) ExecutorOption {
	return func(e *Executor) { e.locate = l }
}

// WithPlatform overrides the target operating system used for platform-only flags.
func WithPlatform(goos string) ExecutorOption {
	return func(e *Executor) { e.goos = goos }
}

// WithClassifier replaces the failure classifier.
func WithClassifier(c *ErrorClassifier) ExecutorOption {
	return func(e *Executor) { e.classifier = c }
}

// NewExecutor creates an execution engine on top of runner.
func NewExecutor(runner process.Runner, logger zerolog.Logger, opts ...ExecutorOption) *Executor {
	e := &Executor{
		runner:        runner,
		registry:      NewRegistry(),
		classifier:    defaultClassifier,
		clock:         clock.RealClock{},
		logger:        logger.With().Str("component", "git").Logger(),
		slowThreshold: constants.DefaultSlowCallThreshold,
		goos:          runtime.GOOS,
		locate:        PathLocator(""),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.gate = newVersionGate(e.locate, e.probeVersion, e.logger)
	return e
}

// Execute runs req and applies its error policy.
//
// Spawn failures are always returned, whatever the policy. For ExitCodeOnly
// requests a non-zero exit is reported in Output.ExitCode instead of as an error.
func (e *Executor) Execute(ctx context.Context, req Request) (*Output, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if err := process.ValidateEncoding(req.Encoding); err != nil {
		return nil, err
	}

	start := e.clock.Now()
	path, err := e.gate.Path(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, gperrors.ErrSpawnFailed) {
			return nil, err
		}
		return nil, &process.SpawnError{Path: constants.ToolGit, Args: req.Args, Dir: req.Dir, Err: err}
	}
	return e.execute(ctx, path, req, start)
}

// Text runs req and returns its decoded output.
func (e *Executor) Text(ctx context.Context, req Request) (string, error) {
	out, err := e.Execute(ctx, req)
	if err != nil {
		return "", err
	}
	return out.Text, nil
}

// ExitCode runs req in exit-code-only mode.
func (e *Executor) ExitCode(ctx context.Context, req Request) (int, error) {
	req.ExitCodeOnly = true
	out, err := e.Execute(ctx, req)
	if err != nil {
		return 0, err
	}
	return out.ExitCode, nil
}

// Path returns the resolved git executable.
func (e *Executor) Path(ctx context.Context) (string, error) {
	return e.gate.Path(ctx)
}

// Version returns the installed git version.
func (e *Executor) Version(ctx context.Context) (string, error) {
	return e.gate.Version(ctx)
}

// IsAtLeastVersion reports whether the installed git is at least minimum.
func (e *Executor) IsAtLeastVersion(ctx context.Context, minimum string) bool {
	return e.gate.IsAtLeastVersion(ctx, minimum)
}

// ResetCaches clears the cached git path and version.
func (e *Executor) ResetCaches() {
	e.gate.Reset()
}

// InFlight returns the number of git processes currently running.
func (e *Executor) InFlight() int {
	return e.registry.Len()
}

func (e *Executor) probeVersion(ctx context.Context, path string) (string, error) {
	out, err := e.execute(ctx, path, Request{
		Args:   []string{constants.VersionFlagStandard},
		Errors: ErrorsThrow,
	}, e.clock.Now())
	if err != nil {
		return "", err
	}
	return out.Text, nil
}

func (e *Executor) execute(ctx context.Context, path string, req Request, start time.Time) (*Output, error) {
	key := req.Key()
	call, leader := e.registry.acquire(key, req.Encoding)
	waited := !leader

	if leader {
		spec := process.Spec{
			Path:     path,
			Args:     e.buildArgs(req),
			Dir:      req.Dir,
			Stdin:    req.Stdin,
			Env:      e.buildEnv(req),
			Encoding: req.Encoding,
		}
		// The process outlives any single waiter's context.
		runCtx := ctxutil.Detach(ctx)
		go func() {
			res, err := e.runner.Run(runCtx, spec)
			e.registry.settle(key, call, res, err)
		}()
	} else {
		e.logger.Debug().
			Str("cmd", logging.RedactCommandLine(constants.ToolGit, req.Args)).
			Str("dir", req.Dir).
			Msg("waiting on in-flight git command")
	}

	select {
	case <-call.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	out, benign, err := e.outcome(req, call)
	e.logCall(req, e.clock.Now().Sub(start), waited, benign, err)
	return out, err
}

// outcome applies req's policy to the shared result of call. benign is the
// failure the classifier swallowed, if any.
func (e *Executor) outcome(req Request, call *pendingCall) (out *Output, benign *process.ExitError, err error) {
	res, runErr := call.result, call.err

	if runErr == nil {
		if req.ExitCodeOnly {
			return &Output{ExitCode: res.ExitCode}, nil, nil
		}
		out, err = decode(req, call, res)
		return out, nil, err
	}

	var exitErr *process.ExitError
	if !errors.As(runErr, &exitErr) {
		// Spawn failures and anything else unexpected always propagate.
		return nil, nil, runErr
	}

	if req.ExitCodeOnly {
		return &Output{ExitCode: exitErr.ExitCode}, nil, nil
	}

	switch req.Errors {
	case ErrorsIgnore:
		return &Output{}, nil, nil
	case ErrorsThrow:
		return nil, nil, exitErr
	case ErrorsDefault:
	}

	verdict := e.classifier.Classify(exitErr.Message())
	if verdict.Benign {
		return &Output{}, exitErr, nil
	}
	return nil, nil, &CommandError{
		Category: verdict.Category,
		Dir:      req.Dir,
		Elapsed:  exitErr.Elapsed,
		Err:      exitErr,
	}
}

// decode returns the output in the caller's encoding. Waiters that asked for
// a different encoding than the process was started with decode the raw bytes.
func decode(req Request, call *pendingCall, res *process.Result) (*Output, error) {
	if process.IsBinary(req.Encoding) {
		return &Output{Bytes: res.Stdout}, nil
	}
	if sameEncoding(req.Encoding, call.encoding) {
		return &Output{Text: res.Text, Bytes: res.Stdout}, nil
	}
	text, err := process.Decode(res.Stdout, req.Encoding)
	if err != nil {
		return nil, err
	}
	return &Output{Text: text, Bytes: res.Stdout}, nil
}

func sameEncoding(a, b string) bool {
	norm := func(s string) string {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || s == "utf-8" {
			return process.EncodingUTF8
		}
		return s
	}
	return norm(a) == norm(b)
}

func (e *Executor) buildArgs(req Request) []string {
	args := make([]string, 0, 2*(len(constants.SafetyConfigs)+len(e.extraConfigs)+len(req.Configs)+1)+len(req.Args))
	if e.goos == "windows" {
		for _, cfg := range constants.WindowsConfigs {
			args = append(args, "-c", cfg)
		}
	}
	for _, cfg := range constants.SafetyConfigs {
		args = append(args, "-c", cfg)
	}
	for _, cfg := range e.extraConfigs {
		args = append(args, "-c", cfg)
	}
	for _, cfg := range req.Configs {
		args = append(args, "-c", cfg)
	}
	return append(args, req.Args...)
}

// buildEnv layers configured, per-request and safety variables, in that order.
// Safety variables are applied last so nothing can re-enable prompts.
func (e *Executor) buildEnv(req Request) []string {
	env := make([]string, 0, len(e.environment)+len(req.Env)+len(constants.SafetyEnv))
	env = appendSorted(env, e.environment)
	env = appendSorted(env, req.Env)
	return appendSorted(env, constants.SafetyEnv)
}

func appendSorted(dst []string, vars map[string]string) []string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		dst = append(dst, k+"="+vars[k])
	}
	return dst
}

func (e *Executor) logCall(req Request, duration time.Duration, waited bool, benign *process.ExitError, err error) {
	slow := duration > e.slowThreshold
	cmd := logging.RedactCommandLine(constants.ToolGit, req.Args)

	var event *zerolog.Event
	switch {
	case err != nil:
		event = e.logger.Error().Err(err)
	case benign != nil:
		event = e.logger.Warn().Str("benign", strings.TrimSpace(strings.ReplaceAll(benign.Message(), "fatal: ", "")))
	case slow:
		event = e.logger.Warn()
	default:
		event = e.logger.Debug()
	}

	event.
		Str("cmd", cmd).
		Str("dir", req.Dir).
		Int64("duration_ms", duration.Milliseconds()).
		Bool("slow", slow).
		Bool("waited", waited).
		Msg("git command completed")
}
