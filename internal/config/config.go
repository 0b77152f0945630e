// Package config provides configuration management for gitpulse with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (GITPULSE_* prefix)
//  3. Project config (.gitpulse/config.yaml)
//  4. Global config (~/.gitpulse/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/git, internal/watch or other internal packages.
package config

import (
	"strings"
	"time"
)

// Config is the root configuration structure for gitpulse.
type Config struct {
	// Git contains settings for running git commands.
	Git GitConfig `yaml:"git" mapstructure:"git"`

	// Watch contains settings for repository change notification.
	Watch WatchConfig `yaml:"watch" mapstructure:"watch"`

	// Log contains settings for the CLI log file.
	Log LogConfig `yaml:"log" mapstructure:"log"`
}

// GitConfig contains settings for the command execution engine.
type GitConfig struct {
	// Path is the git executable. Empty means look it up on PATH.
	Path string `yaml:"path" mapstructure:"path"`

	// ExtraConfigs are "key=value" pairs passed as -c flags to every command.
	// Example: ["core.quotepath=false"]
	ExtraConfigs []string `yaml:"extra_configs" mapstructure:"extra_configs"`

	// SlowCallThreshold is the duration above which a command is logged as slow.
	// Default: 500ms
	SlowCallThreshold time.Duration `yaml:"slow_call_threshold" mapstructure:"slow_call_threshold"`

	// Environment holds "NAME=value" variables added to every command's environment.
	// A list keeps variable names case-sensitive.
	Environment []string `yaml:"environment" mapstructure:"environment"`
}

// EnvironmentMap returns Environment as a map. Later entries win.
func (c GitConfig) EnvironmentMap() map[string]string {
	if len(c.Environment) == 0 {
		return nil
	}
	env := make(map[string]string, len(c.Environment))
	for _, kv := range c.Environment {
		if name, value, ok := strings.Cut(kv, "="); ok {
			env[name] = value
		}
	}
	return env
}

// WatchConfig contains settings for the repository change notifier.
type WatchConfig struct {
	// RepositoryDebounce is the quiet window before metadata changes are emitted.
	// Default: 250ms, Valid range: 1ms-1m
	RepositoryDebounce time.Duration `yaml:"repository_debounce" mapstructure:"repository_debounce"`

	// FileSystemDebounce is the quiet window before working tree changes are emitted.
	// Default: 2.5s, Valid range: 1ms-1m
	FileSystemDebounce time.Duration `yaml:"file_system_debounce" mapstructure:"file_system_debounce"`

	// IgnoreFetchHead skips FETCH_HEAD updates instead of reporting them as remote changes.
	// Default: true
	IgnoreFetchHead bool `yaml:"ignore_fetch_head" mapstructure:"ignore_fetch_head"`
}

// LogConfig contains settings for CLI logging.
type LogConfig struct {
	// FileEnabled writes a rotating log file under ~/.gitpulse/logs.
	// Default: true
	FileEnabled bool `yaml:"file_enabled" mapstructure:"file_enabled"`
}
