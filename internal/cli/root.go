// Package cli provides the command-line interface for gitpulse.
package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/gitpulse/internal/config"
	"github.com/mrz1836/gitpulse/internal/errors"
	"github.com/mrz1836/gitpulse/internal/git"
	"github.com/mrz1836/gitpulse/internal/process"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// globalLogger stores the initialized logger for use by subcommands.
// It is set during PersistentPreRunE and read via GetLogger.
var (
	globalLogger   zerolog.Logger //nolint:gochecknoglobals // CLI logger requires global access
	globalLoggerMu sync.RWMutex   //nolint:gochecknoglobals // Protects globalLogger
)

// GetLogger returns the initialized logger for use by subcommands.
//
// IMPORTANT: This function MUST only be called after the root command's
// PersistentPreRunE has executed. Before that it returns a zero-value
// logger that discards all output.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// app carries what subcommands share: flags, the loaded configuration, and
// the collaborators used to build the git engine.
type app struct {
	flags *GlobalFlags
	cfg   *config.Config

	// runner spawns processes. Nil means process.NewExecRunner.
	runner process.Runner

	// gitOptions are appended to the executor options derived from config.
	gitOptions []git.ExecutorOption

	// logWriter replaces console and file logging when set.
	logWriter io.Writer
}

// executor builds a git executor from the loaded configuration.
func (a *app) executor(logger zerolog.Logger) *git.Executor {
	runner := a.runner
	if runner == nil {
		runner = process.NewExecRunner(logger)
	}

	opts := []git.ExecutorOption{
		git.WithLocator(git.PathLocator(a.cfg.Git.Path)),
		git.WithSlowCallThreshold(a.cfg.Git.SlowCallThreshold),
		git.WithExtraConfigs(a.cfg.Git.ExtraConfigs),
		git.WithEnvironment(a.cfg.Git.EnvironmentMap()),
	}
	opts = append(opts, a.gitOptions...)

	return git.NewExecutor(runner, logger, opts...)
}

// newRootCmd creates the root command for the gitpulse CLI.
func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	return newRootCmdWithApp(&app{flags: flags}, info)
}

func newRootCmdWithApp(a *app, info BuildInfo) *cobra.Command {
	v := viper.New()
	flags := a.flags

	cmd := &cobra.Command{
		Use:   "gitpulse",
		Short: "gitpulse - git command engine and repository change notifier",
		Long: `gitpulse runs git commands with in-flight deduplication, error
classification, and version-gated flags, and watches repositories for
metadata and working tree changes.

Features:
  • Concurrent identical git commands share one process
  • Expected git failures are classified and swallowed
  • Repository changes are debounced into semantic events
  • Working tree changes are filtered through .gitignore`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}

			if !IsValidOutputFormat(flags.Output) {
				return fmt.Errorf("%w: %q must be one of %v", errors.ErrInvalidOutputFormat, flags.Output, ValidOutputFormats())
			}

			cfg, err := config.LoadWithOverrides(cmd.Context(), &config.Config{
				Git: config.GitConfig{Path: flags.GitPath},
			})
			if err != nil {
				return err
			}
			a.cfg = cfg

			var logger zerolog.Logger
			if a.logWriter != nil {
				logger = InitLoggerWithWriter(flags.Verbose, flags.Quiet, a.logWriter)
			} else {
				logger = InitLogger(flags.Verbose, flags.Quiet, cfg.Log.FileEnabled)
			}

			globalLoggerMu.Lock()
			globalLogger = logger
			globalLoggerMu.Unlock()

			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			CloseLogFile()
		},
		SilenceUsage: true,
	}

	AddGlobalFlags(cmd, flags)

	AddExecCommand(cmd, a)
	AddVersionCommand(cmd, a)
	AddClassifyCommand(cmd, a)
	AddWatchCommand(cmd, a)
	AddConfigCommand(cmd, a)

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info.
func Execute(ctx context.Context, info BuildInfo) error {
	flags := &GlobalFlags{}
	//nolint:contextcheck // Cobra command pattern uses cmd.Context() internally
	cmd := newRootCmd(flags, info)
	return cmd.ExecuteContext(ctx)
}
