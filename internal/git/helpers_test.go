package git

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/mrz1836/gitpulse/internal/process"
	"github.com/mrz1836/gitpulse/internal/testutil"
)

const testGitPath = "/usr/bin/git"

// newTestExecutor builds an Executor over a FakeRunner that reports version
// for `git --version` and delegates everything else to handler.
func newTestExecutor(t *testing.T, version string, handler testutil.RunHandler, opts ...ExecutorOption) (*Executor, *testutil.FakeRunner) {
	t.Helper()

	runner := testutil.NewFakeRunner(func(spec process.Spec) (*process.Result, error) {
		if testutil.Subcommand(spec) == "--version" {
			return testutil.Output("git version " + version + "\n")
		}
		if handler == nil {
			return testutil.Output("")
		}
		return handler(spec)
	})

	base := []ExecutorOption{
		WithLocator(func() (string, error) { return testGitPath, nil }),
		WithPlatform("linux"),
	}
	return NewExecutor(runner, zerolog.Nop(), append(base, opts...)...), runner
}

// userArgs strips the leading -c pairs the executor adds.
func userArgs(spec process.Spec) []string {
	args := spec.Args
	for len(args) >= 2 && args[0] == "-c" {
		args = args[2:]
	}
	return args
}
