//go:build unix

package signal

import (
	"os"

	"golang.org/x/sys/unix"
)

// toggleSignals pause and resume long-running commands.
//
//nolint:gochecknoglobals // Platform signal table
var toggleSignals = []os.Signal{unix.SIGUSR1}
