//go:build !unix

package signal

import "os"

// toggleSignals is empty where there are no user-defined signals.
//
//nolint:gochecknoglobals // Platform signal table
var toggleSignals []os.Signal
