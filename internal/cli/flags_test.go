package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/gitpulse/internal/errors"
)

func TestAddGlobalFlags(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{Use: "test"}
	AddGlobalFlags(cmd, &GlobalFlags{})

	tests := []struct {
		name      string
		shorthand string
		def       string
	}{
		{"output", "o", OutputText},
		{"verbose", "v", "false"},
		{"quiet", "q", "false"},
		{"git-path", "", ""},
	}
	for _, tc := range tests {
		f := cmd.PersistentFlags().Lookup(tc.name)
		require.NotNil(t, f, tc.name)
		assert.Equal(t, tc.shorthand, f.Shorthand, tc.name)
		assert.Equal(t, tc.def, f.DefValue, tc.name)
	}
}

func TestAddGlobalFlags_Parse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want GlobalFlags
	}{
		{nil, GlobalFlags{Output: OutputText}},
		{[]string{"-o", "json"}, GlobalFlags{Output: OutputJSON}},
		{[]string{"--output", "json", "-v"}, GlobalFlags{Output: OutputJSON, Verbose: true}},
		{[]string{"-q"}, GlobalFlags{Output: OutputText, Quiet: true}},
		{[]string{"--git-path", "/opt/git/bin/git"}, GlobalFlags{Output: OutputText, GitPath: "/opt/git/bin/git"}},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprint(tc.args), func(t *testing.T) {
			t.Parallel()

			var got GlobalFlags
			cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
			AddGlobalFlags(cmd, &got)
			cmd.SetArgs(tc.args)
			require.NoError(t, cmd.Execute())
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAddGlobalFlags_VerboseQuietConflict(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	AddGlobalFlags(cmd, &GlobalFlags{})
	cmd.SetArgs([]string{"-v", "-q"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestBindGlobalFlags(t *testing.T) {
	t.Parallel()

	v := viper.New()
	root := &cobra.Command{Use: "root"}
	AddGlobalFlags(root, &GlobalFlags{})
	child := &cobra.Command{Use: "child"}
	root.AddCommand(child)

	require.NoError(t, BindGlobalFlags(v, child))
	require.NoError(t, root.PersistentFlags().Set("output", "json"))
	require.NoError(t, root.PersistentFlags().Set("quiet", "true"))

	assert.Equal(t, "json", v.GetString("output"))
	assert.True(t, v.GetBool("quiet"))
	assert.False(t, v.GetBool("verbose"))
}

func TestIsValidOutputFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"text", "json"}, ValidOutputFormats())
	for _, format := range []string{"text", "json"} {
		assert.True(t, IsValidOutputFormat(format), format)
	}
	for _, format := range []string{"", "xml", "TEXT", "JSON"} {
		assert.False(t, IsValidOutputFormat(format), format)
	}
}

//nolint:err113 // Dynamic errors stand in for cobra's unexported ones
func TestExitCodeForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"invalid output format", errors.ErrInvalidOutputFormat, ExitInvalidInput},
		{"wrapped output format", fmt.Errorf("flags: %w", errors.ErrInvalidOutputFormat), ExitInvalidInput},
		{"invalid argument", fmt.Errorf("%w: bad --errors value", errors.ErrInvalidArgument), ExitInvalidInput},
		{"exit code 2 wrapper", errors.NewExitCode2Error(stderrors.New("unsupported encoding")), ExitInvalidInput},
		{"unknown flag", stderrors.New("unknown flag: --foo"), ExitInvalidInput},
		{"unknown shorthand", stderrors.New("unknown shorthand flag: 'x' in -x"), ExitInvalidInput},
		{"missing flag value", stderrors.New("flag needs an argument: --output"), ExitInvalidInput},
		{"bad flag value", stderrors.New(`invalid argument "x" for "--debounce"`), ExitInvalidInput},
		{"flag group", stderrors.New("if any flags in the group [verbose quiet] are set none of the others can be"), ExitInvalidInput},
		{"unknown command", stderrors.New(`unknown command "foo" for "gitpulse"`), ExitInvalidInput},
		{"arg count", stderrors.New("accepts 1 arg(s), received 0"), ExitInvalidInput},
		{"min args", stderrors.New("requires at least 1 arg(s), only received 0"), ExitInvalidInput},
		{"interrupted", fmt.Errorf("exec: %w", context.Canceled), ExitInterrupted},
		{"git failure", fmt.Errorf("%w: exit status 128", errors.ErrGitOperation), ExitError},
		{"generic", stderrors.New("something went wrong"), ExitError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ExitCodeForError(tc.err))
		})
	}
}

func TestEncodeJSONIndented(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, encodeJSONIndented(&buf, map[string]int{"exit_code": 1}))
	assert.Equal(t, "{\n  \"exit_code\": 1\n}\n", buf.String())
}
