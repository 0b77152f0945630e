package config

import (
	"strings"

	"github.com/mrz1836/gitpulse/internal/constants"
	"github.com/mrz1836/gitpulse/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - git.slow_call_threshold must be positive
//   - git.extra_configs entries must be "key=value" with a non-empty key
//   - git.environment entries must be "NAME=value" with a non-empty name
//   - watch debounce windows must be between 1ms and 1m
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateGitConfig(&cfg.Git); err != nil {
		return err
	}

	return validateWatchConfig(&cfg.Watch)
}

// validateGitConfig checks Git-specific configuration values.
func validateGitConfig(cfg *GitConfig) error {
	if cfg.SlowCallThreshold <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidGit,
			"git.slow_call_threshold must be positive, got %s", cfg.SlowCallThreshold)
	}

	for _, kv := range cfg.ExtraConfigs {
		key, _, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return errors.Wrapf(errors.ErrConfigInvalidGit,
				"git.extra_configs entry %q must be key=value", kv)
		}
	}

	for _, kv := range cfg.Environment {
		name, _, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return errors.Wrapf(errors.ErrConfigInvalidGit,
				"git.environment entry %q must be NAME=value", kv)
		}
	}

	return nil
}

// validateWatchConfig checks Watch-specific configuration values.
func validateWatchConfig(cfg *WatchConfig) error {
	if cfg.RepositoryDebounce < constants.MinDebounce || cfg.RepositoryDebounce > constants.MaxDebounce {
		return errors.Wrapf(errors.ErrConfigInvalidWatch,
			"watch.repository_debounce must be between %s and %s, got %s",
			constants.MinDebounce, constants.MaxDebounce, cfg.RepositoryDebounce)
	}

	if cfg.FileSystemDebounce < constants.MinDebounce || cfg.FileSystemDebounce > constants.MaxDebounce {
		return errors.Wrapf(errors.ErrConfigInvalidWatch,
			"watch.file_system_debounce must be between %s and %s, got %s",
			constants.MinDebounce, constants.MaxDebounce, cfg.FileSystemDebounce)
	}

	return nil
}
