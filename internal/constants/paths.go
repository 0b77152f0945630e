package constants

// Log file names.
const (
	// CLILogFileName is the name of the global CLI log file.
	// This file is located in ~/.gitpulse/logs/gitpulse.log
	CLILogFileName = "gitpulse.log"
)

// Configuration file names.
const (
	// GlobalConfigName is the name of the global gitpulse configuration file.
	// This file is located in the gitpulse home directory.
	GlobalConfigName = "config.yaml"

	// EnvPrefix is the prefix for environment variable overrides (GITPULSE_*).
	EnvPrefix = "GITPULSE"

	// HomeEnvVar overrides the gitpulse home directory.
	HomeEnvVar = "GITPULSE_HOME"
)

// Repository metadata layout.
const (
	// GitDir is the name of the repository metadata directory.
	GitDir = ".git"

	// GitIgnoreFile is the name of per-directory ignore files.
	GitIgnoreFile = ".gitignore"
)
