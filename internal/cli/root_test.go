package cli

import (
	"bytes"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/gitpulse/internal/errors"
)

func TestRootCmd_Help(t *testing.T) {
	t.Parallel()

	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{Version: "test"})
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "gitpulse")
	assert.Contains(t, output, "watch")
	assert.Contains(t, output, "--output")
	assert.Contains(t, output, "--verbose")
	assert.Contains(t, output, "--quiet")
	assert.Contains(t, output, "--version")
}

func TestRootCmd_Version(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		info           BuildInfo
		expectContains []string
	}{
		{
			name: "full version info",
			info: BuildInfo{
				Version: "1.0.0",
				Commit:  "abc1234",
				Date:    "2025-01-01",
			},
			expectContains: []string{"1.0.0", "abc1234", "2025-01-01"},
		},
		{
			name:           "default dev version",
			info:           BuildInfo{},
			expectContains: []string{"dev", "none", "unknown"},
		},
		{
			name: "partial version info",
			info: BuildInfo{
				Version: "2.0.0-beta",
			},
			expectContains: []string{"2.0.0-beta", "none", "unknown"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			flags := &GlobalFlags{}
			cmd := newRootCmd(flags, tc.info)
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs([]string{"--version"})

			err := cmd.Execute()
			require.NoError(t, err)

			output := buf.String()
			for _, expected := range tc.expectContains {
				assert.Contains(t, output, expected)
			}
		})
	}
}

// newIsolatedRoot builds a root command that logs to a buffer and reads
// config from empty temporary directories.
func newIsolatedRoot(t *testing.T, args ...string) (*cobra.Command, *GlobalFlags, *bytes.Buffer) {
	t.Helper()
	isolateConfig(t)

	flags := &GlobalFlags{}
	cmd := newRootCmdWithApp(&app{flags: flags, logWriter: io.Discard}, BuildInfo{})
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	return cmd, flags, buf
}

func TestRootCmd_OutputFlag(t *testing.T) {
	tests := []struct {
		name          string
		args          []string
		expectedValue string
		expectError   bool
	}{
		{name: "text output", args: []string{"--output", "text", "classify", ".git/index"}, expectedValue: OutputText},
		{name: "json output", args: []string{"--output", "json", "classify", ".git/index"}, expectedValue: OutputJSON},
		{name: "shorthand output", args: []string{"-o", "json", "classify", ".git/index"}, expectedValue: OutputJSON},
		{name: "invalid output format", args: []string{"--output", "xml", "classify", ".git/index"}, expectError: true},
		{name: "empty output format", args: []string{"--output", "", "classify", ".git/index"}, expectError: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd, flags, _ := newIsolatedRoot(t, tc.args...)

			err := cmd.Execute()
			if tc.expectError {
				require.Error(t, err)
				assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedValue, flags.Output)
		})
	}
}

func TestRootCmd_VerboseQuietMutuallyExclusive(t *testing.T) {
	cmd, _, _ := newIsolatedRoot(t, "--verbose", "--quiet", "classify", ".git/index")

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verbose")
	assert.Contains(t, err.Error(), "quiet")
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestRootCmd_VerbosityFlags(t *testing.T) {
	tests := []struct {
		name            string
		args            []string
		expectedVerbose bool
		expectedQuiet   bool
	}{
		{name: "verbose long form", args: []string{"--verbose"}, expectedVerbose: true},
		{name: "verbose short form", args: []string{"-v"}, expectedVerbose: true},
		{name: "quiet long form", args: []string{"--quiet"}, expectedQuiet: true},
		{name: "quiet short form", args: []string{"-q"}, expectedQuiet: true},
		{name: "neither", args: []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd, flags, _ := newIsolatedRoot(t, append(tc.args, "classify", ".git/HEAD")...)

			require.NoError(t, cmd.Execute())
			assert.Equal(t, tc.expectedVerbose, flags.Verbose)
			assert.Equal(t, tc.expectedQuiet, flags.Quiet)
		})
	}
}

func TestRootCmd_SilencesUsageOnError(t *testing.T) {
	cmd, _, buf := newIsolatedRoot(t, "--output", "invalid", "classify", ".git/index")

	require.Error(t, cmd.Execute())
	assert.NotContains(t, buf.String(), "Usage:")
}

func TestRootCmd_InvalidConfigFails(t *testing.T) {
	cmd, _, _ := newIsolatedRoot(t, "classify", ".git/index")
	t.Setenv("GITPULSE_WATCH_REPOSITORY_DEBOUNCE", "0s")

	err := cmd.Execute()
	require.ErrorIs(t, err, errors.ErrConfigInvalidWatch)
}

func TestRootCmd_GitPathOverride(t *testing.T) {
	flags := &GlobalFlags{}
	a := &app{flags: flags, logWriter: io.Discard}
	isolateConfig(t)

	cmd := newRootCmdWithApp(a, BuildInfo{})
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{"--git-path", "/opt/git/bin/git", "classify", ".git/index"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "/opt/git/bin/git", a.cfg.Git.Path)
}

func TestRootCmd_RunsSubcommand(t *testing.T) {
	cmd, _, buf := newIsolatedRoot(t, "classify", ".git/refs/tags/v1.0.0")

	require.NoError(t, cmd.Execute())
	assert.Equal(t, ".git/refs/tags/v1.0.0: tags\n", buf.String())
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	t.Parallel()

	cmd := newRootCmd(&GlobalFlags{}, BuildInfo{})

	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"exec", "version", "classify", "watch", "config"} {
		assert.Contains(t, names, want)
	}
}

func TestFormatVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		info     BuildInfo
		expected string
	}{
		{
			name: "all fields set",
			info: BuildInfo{
				Version: "1.0.0",
				Commit:  "abc123",
				Date:    "2025-01-01",
			},
			expected: "1.0.0 (commit: abc123, built: 2025-01-01)",
		},
		{
			name:     "empty info uses defaults",
			info:     BuildInfo{},
			expected: "dev (commit: none, built: unknown)",
		},
		{
			name: "partial info fills defaults",
			info: BuildInfo{
				Version: "2.0.0",
			},
			expected: "2.0.0 (commit: none, built: unknown)",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, formatVersion(tc.info))
		})
	}
}

func TestGetLogger(t *testing.T) {
	var logs bytes.Buffer
	isolateConfig(t)

	flags := &GlobalFlags{}
	cmd := newRootCmdWithApp(&app{flags: flags, logWriter: &logs}, BuildInfo{})
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{"-v", "classify", ".git/index"})
	require.NoError(t, cmd.Execute())

	logger := GetLogger()
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
	logger.Debug().Msg("after execute")
	assert.Contains(t, logs.String(), "after execute")
}
