// Package testutil provides testing utilities for gitpulse.
//
// This package contains mock errors, a fake clock and a fake process runner
// used across test files. It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Sentinel failures injected by fakes.
var (
	// ErrMockFileNotFound indicates a mock file was not found.
	ErrMockFileNotFound = errors.New("file not found")

	// ErrMockGitFailed indicates a mock git command failed.
	ErrMockGitFailed = errors.New("git command failed")

	// ErrMockWatcher indicates a mock file watcher failure.
	ErrMockWatcher = errors.New("watcher error")
)
