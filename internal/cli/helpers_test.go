package cli

import (
	"testing"

	"github.com/mrz1836/gitpulse/internal/config"
	"github.com/mrz1836/gitpulse/internal/git"
	"github.com/mrz1836/gitpulse/internal/process"
	"github.com/mrz1836/gitpulse/internal/testutil"
)

const (
	testGitPath    = "/usr/bin/git"
	testGitVersion = "2.43.0"
)

// newTestApp builds an app whose git executor spawns through a fake runner.
// The runner answers the version probe itself and hands everything else to
// handler.
func newTestApp(t *testing.T, output string, handler testutil.RunHandler) (*app, *testutil.FakeRunner) {
	t.Helper()

	runner := testutil.NewFakeRunner(func(spec process.Spec) (*process.Result, error) {
		if testutil.Subcommand(spec) == "--version" {
			return testutil.Output("git version " + testGitVersion + "\n")
		}
		if handler == nil {
			return testutil.Output("")
		}
		return handler(spec)
	})

	a := &app{
		flags:  &GlobalFlags{Output: output},
		cfg:    config.DefaultConfig(),
		runner: runner,
		gitOptions: []git.ExecutorOption{
			git.WithLocator(func() (string, error) { return testGitPath, nil }),
			git.WithPlatform("linux"),
		},
	}
	return a, runner
}

// userArgs strips the leading -c pairs the executor adds.
func userArgs(spec process.Spec) []string {
	args := spec.Args
	for len(args) >= 2 && args[0] == "-c" {
		args = args[2:]
	}
	return args
}

// commandSpecs returns the recorded spawns other than the version probe.
func commandSpecs(runner *testutil.FakeRunner) []process.Spec {
	var out []process.Spec
	for _, spec := range runner.Calls() {
		if testutil.Subcommand(spec) != "--version" {
			out = append(out, spec)
		}
	}
	return out
}
