package git

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gperrors "github.com/mrz1836/gitpulse/internal/errors"
	"github.com/mrz1836/gitpulse/internal/process"
	"github.com/mrz1836/gitpulse/internal/testutil"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		current  string
		required string
		want     int
	}{
		{"2.9.0", "2.10.0", -1},
		{"2.10.0", "2.9.0", 1},
		{"2.30.1", "2.30", 1},
		{"2.30", "2.30.0", 0},
		{"2.18.0", "2.18", 0},
		{"v2.43.0", "2.43.0", 0},
		{"2.40.0.windows.1", "2.40", 0},
		{"2.45.0-rc1", "2.45.0", 0},
		{"1.9.9", "2.0", -1},
	}

	for _, tt := range tests {
		t.Run(tt.current+"_vs_"+tt.required, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareVersions(tt.current, tt.required))
		})
	}
}

func TestParseGitVersion(t *testing.T) {
	tests := map[string]string{
		"git version 2.43.0\n":               "2.43.0",
		"git version 2.39.3 (Apple Git-145)": "2.39.3",
		"git version 2.40.0.windows.1":       "2.40.0",
		"git version 2.9":                    "2.9",
		"something else entirely":            "",
		"":                                   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseGitVersion(in), in)
	}
}

func TestVersionGate_IsAtLeastVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		installed string
		minimum   string
		want      bool
	}{
		{"2.9.0", "2.10.0", false},
		{"2.30.1", "2.30", true},
		{"2.18.0", "2.18", true},
		{"2.17.9", "2.18", false},
	}

	for _, tt := range tests {
		t.Run(tt.installed+">="+tt.minimum, func(t *testing.T) {
			t.Parallel()
			e, _ := newTestExecutor(t, tt.installed, nil)
			assert.Equal(t, tt.want, e.IsAtLeastVersion(context.Background(), tt.minimum))
		})
	}
}

func TestVersionGate_CachesUntilReset(t *testing.T) {
	t.Parallel()

	e, runner := newTestExecutor(t, "2.43.0", nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := e.Version(ctx)
			assert.NoError(t, err)
			assert.Equal(t, "2.43.0", v)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, runner.CallCount())

	path, err := e.Path(ctx)
	require.NoError(t, err)
	assert.Equal(t, testGitPath, path)
	assert.True(t, e.IsAtLeastVersion(ctx, "2.30"))
	assert.Equal(t, 1, runner.CallCount())

	e.ResetCaches()
	_, err = e.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, runner.CallCount())
}

func TestVersionGate_FailuresNeverRaiseFromIsAtLeast(t *testing.T) {
	t.Parallel()

	t.Run("unparseable version", func(t *testing.T) {
		t.Parallel()
		runner := testutil.NewFakeRunner(func(process.Spec) (*process.Result, error) {
			return testutil.Output("not git at all")
		})
		e := NewExecutor(runner, zerolog.Nop(), WithLocator(func() (string, error) { return testGitPath, nil }))

		_, err := e.Version(context.Background())
		require.ErrorIs(t, err, gperrors.ErrVersionUnknown)
		assert.False(t, e.IsAtLeastVersion(context.Background(), "1.0"))
	})

	t.Run("missing git", func(t *testing.T) {
		t.Parallel()
		runner := testutil.NewFakeRunner(nil)
		e := NewExecutor(runner, zerolog.Nop(), WithLocator(PathLocator("gitpulse-no-such-git-binary")))

		_, err := e.Version(context.Background())
		require.ErrorIs(t, err, gperrors.ErrGitNotFound)
		assert.False(t, e.IsAtLeastVersion(context.Background(), "1.0"))
		assert.Equal(t, 0, runner.CallCount())
	})

	t.Run("failed resolution is retried", func(t *testing.T) {
		t.Parallel()
		calls := 0
		runner := testutil.NewFakeRunner(func(spec process.Spec) (*process.Result, error) {
			calls++
			if calls == 1 {
				return testutil.Failure(spec, 1, "boom")
			}
			return testutil.Output("git version 2.43.0")
		})
		e := NewExecutor(runner, zerolog.Nop(), WithLocator(func() (string, error) { return testGitPath, nil }))

		_, err := e.Version(context.Background())
		require.Error(t, err)
		v, err := e.Version(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "2.43.0", v)
	})
}
