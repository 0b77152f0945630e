package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/gitpulse/internal/process"
)

func TestFakeRunner_RecordsCalls(t *testing.T) {
	r := NewFakeRunner(func(spec process.Spec) (*process.Result, error) {
		return Output("out:" + Subcommand(spec))
	})

	res, err := r.Run(context.Background(), process.Spec{Path: "git", Args: []string{"-c", "a=b", "status"}})
	require.NoError(t, err)
	assert.Equal(t, "out:status", res.Text)
	assert.Equal(t, []byte("out:status"), res.Stdout)

	_, err = r.Run(context.Background(), process.Spec{Path: "git", Args: []string{"log"}})
	require.NoError(t, err)

	calls := r.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, 2, r.CallCount())
	assert.Equal(t, "log", Subcommand(calls[1]))

	calls[0].Path = "mutated"
	assert.Equal(t, "git", r.Calls()[0].Path)
}

func TestFakeRunner_NilHandler(t *testing.T) {
	r := NewFakeRunner(nil)
	res, err := r.Run(context.Background(), process.Spec{Path: "git"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
}

func TestFakeRunner_BlockRelease(t *testing.T) {
	r := NewFakeRunner(nil)
	r.Block()

	done := make(chan error, 1)
	go func() {
		_, err := r.Run(context.Background(), process.Spec{Path: "git", Args: []string{"fetch"}})
		done <- err
	}()

	select {
	case spec := <-r.Started():
		assert.Equal(t, "fetch", Subcommand(spec))
	case <-time.After(time.Second):
		t.Fatal("run did not start")
	}

	select {
	case <-done:
		t.Fatal("run finished while blocked")
	case <-time.After(20 * time.Millisecond):
	}

	r.Release()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("run still blocked after release")
	}
}

func TestFakeRunner_BlockedRunHonorsContext(t *testing.T) {
	r := NewFakeRunner(nil)
	r.Block()
	defer r.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, process.Spec{Path: "git"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestFailure(t *testing.T) {
	spec := process.Spec{Path: "git", Args: []string{"push"}, Dir: "/repo"}
	res, err := Failure(spec, 128, "fatal: nope")
	require.Error(t, err)
	assert.Equal(t, 128, res.ExitCode)

	var exitErr *process.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 128, exitErr.ExitCode)
	assert.Equal(t, "fatal: nope", exitErr.Stderr)
	assert.Equal(t, "git push", exitErr.CommandLine)
	assert.Equal(t, "/repo", exitErr.Dir)
}

func TestSubcommand(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{nil, ""},
		{[]string{"status"}, "status"},
		{[]string{"-c", "x=y", "-c", "z=w", "rev-parse", "HEAD"}, "rev-parse"},
		{[]string{"-c", "x=y"}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Subcommand(process.Spec{Args: tt.args}))
	}
}
