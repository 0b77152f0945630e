package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/gitpulse/internal/git"
)

func TestRunVersion_Text(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		minimum  string
		expected string
	}{
		{
			name:     "without minimum",
			expected: "git 2.43.0 (/usr/bin/git)\n",
		},
		{
			name:     "satisfied minimum",
			minimum:  "2.30",
			expected: "git 2.43.0 (/usr/bin/git)\nat least 2.30: yes\n",
		},
		{
			name:     "numeric comparison",
			minimum:  "2.9.0",
			expected: "git 2.43.0 (/usr/bin/git)\nat least 2.9.0: yes\n",
		},
		{
			name:     "unsatisfied minimum",
			minimum:  "2.50.1",
			expected: "git 2.43.0 (/usr/bin/git)\nat least 2.50.1: no\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			a, _ := newTestApp(t, OutputText, nil)
			var buf bytes.Buffer
			require.NoError(t, runVersion(context.Background(), a, &buf, tc.minimum))
			assert.Equal(t, tc.expected, buf.String())
		})
	}
}

func TestRunVersion_JSON(t *testing.T) {
	t.Parallel()

	a, runner := newTestApp(t, OutputJSON, nil)
	var buf bytes.Buffer
	require.NoError(t, runVersion(context.Background(), a, &buf, "2.30"))

	var res versionResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &res))
	assert.Equal(t, testGitPath, res.Path)
	assert.Equal(t, testGitVersion, res.Version)
	assert.Equal(t, "2.30", res.Minimum)
	require.NotNil(t, res.AtLeast)
	assert.True(t, *res.AtLeast)

	// Path, version and the comparison share one probe.
	assert.Equal(t, 1, runner.CallCount())
}

func TestRunVersion_GitMissing(t *testing.T) {
	t.Parallel()

	a, runner := newTestApp(t, OutputText, nil)
	a.gitOptions = append(a.gitOptions, git.WithLocator(func() (string, error) {
		return "", errors.New("git: executable file not found in $PATH") //nolint:err113 // test error
	}))

	err := runVersion(context.Background(), a, &bytes.Buffer{}, "")
	require.Error(t, err)
	assert.Zero(t, runner.CallCount())
}
