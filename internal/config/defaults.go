package config

import (
	"github.com/mrz1836/gitpulse/internal/constants"
)

// DefaultConfig returns a new Config with default values.
// These defaults are the base layer that config files, environment
// variables, and CLI flags override.
func DefaultConfig() *Config {
	return &Config{
		Git: GitConfig{
			// Path: empty means resolve git from PATH on first use.
			Path: "",

			SlowCallThreshold: constants.DefaultSlowCallThreshold,
		},
		Watch: WatchConfig{
			RepositoryDebounce: constants.DefaultRepositoryDebounce,
			FileSystemDebounce: constants.DefaultFileSystemDebounce,

			// IgnoreFetchHead: fetches alone do not change repository state.
			IgnoreFetchHead: true,
		},
		Log: LogConfig{
			FileEnabled: true,
		},
	}
}
