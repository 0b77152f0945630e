package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/gitpulse/internal/constants"
	"github.com/mrz1836/gitpulse/internal/errors"
)

// newViperInstance returns a viper with defaults set and GITPULSE_ variables
// mapped onto dotted keys (GITPULSE_WATCH_REPOSITORY_DEBOUNCE).
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// layer is one config file in precedence order, lowest first.
type layer struct {
	name string
	path string
}

// readLayers merges each existing layer file into v. Missing files and empty
// paths are skipped.
func readLayers(v *viper.Viper, layers ...layer) error {
	for _, l := range layers {
		if l.path == "" {
			continue
		}
		if _, err := os.Stat(l.path); err != nil {
			continue
		}

		v.SetConfigFile(l.path)
		err := v.MergeInConfig()
		var notFound viper.ConfigFileNotFoundError
		if err != nil && !stderrors.As(err, &notFound) {
			return errors.Wrapf(err, "failed to read %s config %s", l.name, l.path)
		}
	}
	return nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load resolves configuration from, in increasing precedence, built-in
// defaults, ~/.gitpulse/config.yaml, .gitpulse/config.yaml in the working
// directory, and GITPULSE_* environment variables. Missing files are fine.
func Load(ctx context.Context) (*Config, error) {
	// An unknown home directory just means there is no global layer.
	globalPath, _ := GlobalConfigPath()

	v := newViperInstance()
	if err := readLayers(v,
		layer{name: "global", path: globalPath},
		layer{name: "project", path: ProjectConfigPath()},
	); err != nil {
		return nil, err
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("component", "config").
		Str("git.path", cfg.Git.Path).
		Dur("git.slow_call_threshold", cfg.Git.SlowCallThreshold).
		Dur("watch.repository_debounce", cfg.Watch.RepositoryDebounce).
		Dur("watch.file_system_debounce", cfg.Watch.FileSystemDebounce).
		Msg("configuration loaded")
	return cfg, nil
}

// LoadWithOverrides is Load followed by applying the non-zero fields of
// overrides, typically populated from command line flags.
func LoadWithOverrides(ctx context.Context, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx)
	if err != nil {
		return nil, err
	}
	if overrides == nil {
		return cfg, nil
	}

	applyOverrides(cfg, overrides)
	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}
	return cfg, nil
}

// LoadFromPaths is Load with explicit file locations. The project file wins
// over the global one, and an empty path skips that layer.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()
	if err := readLayers(v,
		layer{name: "global", path: globalConfigPath},
		layer{name: "project", path: projectConfigPath},
	); err != nil {
		return nil, err
	}
	return decode(v)
}

// setDefaults configures all default values on the Viper instance.
// Keys must match the mapstructure tag names exactly.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("git.path", d.Git.Path)
	v.SetDefault("git.extra_configs", []string{})
	v.SetDefault("git.slow_call_threshold", d.Git.SlowCallThreshold.String())
	v.SetDefault("git.environment", []string{})

	v.SetDefault("watch.repository_debounce", d.Watch.RepositoryDebounce.String())
	v.SetDefault("watch.file_system_debounce", d.Watch.FileSystemDebounce.String())
	v.SetDefault("watch.ignore_fetch_head", d.Watch.IgnoreFetchHead)

	v.SetDefault("log.file_enabled", d.Log.FileEnabled)
}

// applyOverrides merges non-zero override values into the config.
//
// Boolean fields cannot be overridden to false here since the zero value is
// indistinguishable from unset. CLI code handles those with Flags().Changed.
func applyOverrides(cfg, overrides *Config) {
	if overrides.Git.Path != "" {
		cfg.Git.Path = overrides.Git.Path
	}
	if len(overrides.Git.ExtraConfigs) > 0 {
		cfg.Git.ExtraConfigs = append(cfg.Git.ExtraConfigs, overrides.Git.ExtraConfigs...)
	}
	if overrides.Git.SlowCallThreshold != 0 {
		cfg.Git.SlowCallThreshold = overrides.Git.SlowCallThreshold
	}
	if len(overrides.Git.Environment) > 0 {
		cfg.Git.Environment = append(cfg.Git.Environment, overrides.Git.Environment...)
	}

	if overrides.Watch.RepositoryDebounce != 0 {
		cfg.Watch.RepositoryDebounce = overrides.Watch.RepositoryDebounce
	}
	if overrides.Watch.FileSystemDebounce != 0 {
		cfg.Watch.FileSystemDebounce = overrides.Watch.FileSystemDebounce
	}
}

// viperDecoderOption returns the decoder options for Viper unmarshal.
// Durations decode from strings like "250ms"; lists from comma separated
// environment values.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)
}
