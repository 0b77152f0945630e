// Package main provides the entry point for the gitpulse CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mrz1836/gitpulse/internal/cli"
	"github.com/mrz1836/gitpulse/internal/errors"
)

// Set via ldflags at build time.
var (
	version = "dev"     //nolint:gochecknoglobals // Build metadata
	commit  = "none"    //nolint:gochecknoglobals // Build metadata
	date    = "unknown" //nolint:gochecknoglobals // Build metadata
)

func main() {
	ctx := context.Background()
	info := cli.BuildInfo{Version: version, Commit: commit, Date: date}
	if err := cli.Execute(ctx, info); err != nil {
		// Cobra has already printed the error itself.
		if _, action := errors.Actionable(err); action != "" {
			_, _ = fmt.Fprintln(os.Stderr, action)
		}
		os.Exit(cli.ExitCodeForError(err))
	}
}
