// Package constants provides centralized constant values used throughout gitpulse.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory names and paths used by gitpulse for organizing data.
const (
	// GitpulseHome is the hidden directory name where gitpulse stores its data.
	// This directory is created in the user's home directory.
	GitpulseHome = ".gitpulse"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"
)

// Log file rotation settings for the CLI log.
const (
	// LogMaxSizeMB is the size in megabytes at which the log file is rotated.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated log files to keep.
	LogMaxBackups = 3

	// LogMaxAgeDays is the number of days to keep rotated log files.
	LogMaxAgeDays = 14

	// LogCompress enables gzip compression of rotated log files.
	LogCompress = true
)

// Timing defaults for command execution and change notification.
const (
	// DefaultSlowCallThreshold is the duration above which a git command is logged as slow.
	DefaultSlowCallThreshold = 500 * time.Millisecond

	// DefaultRepositoryDebounce is the quiet window before repository metadata
	// changes are emitted to subscribers.
	DefaultRepositoryDebounce = 250 * time.Millisecond

	// DefaultFileSystemDebounce is the quiet window before working tree file
	// changes are emitted to subscribers.
	DefaultFileSystemDebounce = 2500 * time.Millisecond

	// MinDebounce is the smallest accepted debounce window.
	MinDebounce = time.Millisecond

	// MaxDebounce is the largest accepted debounce window.
	MaxDebounce = time.Minute
)
