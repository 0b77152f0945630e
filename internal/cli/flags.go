package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/gitpulse/internal/constants"
	"github.com/mrz1836/gitpulse/internal/errors"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitError        = 1
	ExitInvalidInput = 2
	// ExitInterrupted follows the shell convention of 128+SIGINT.
	ExitInterrupted = 130
)

// Output formats accepted by --output.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// boundFlags are the root persistent flags mirrored into viper.
//
//nolint:gochecknoglobals // Immutable list
var boundFlags = []string{"output", "verbose", "quiet"}

// cobraUsageErrors are message fragments cobra and pflag produce for bad
// command lines. They carry no sentinel, so matching on text is all we have.
//
//nolint:gochecknoglobals // Immutable list
var cobraUsageErrors = []string{
	"unknown flag",
	"unknown shorthand flag",
	"flag needs an argument",
	"invalid argument",
	"if any flags in the group",
	"required flag",
	"unknown command",
	"arg(s), received",
	"requires at least",
}

// GlobalFlags holds the persistent flags shared by every subcommand.
type GlobalFlags struct {
	Output  string // text or json
	Verbose bool   // debug logging
	Quiet   bool   // warnings and errors only
	GitPath string // overrides git.path from config
}

// AddGlobalFlags registers the persistent flags on the root command.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.Output, "output", "o", OutputText, "output format (text|json)")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose output")
	pf.BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress non-essential output")
	pf.StringVar(&flags.GitPath, "git-path", "", "git executable to use instead of the configured one")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// BindGlobalFlags exposes the root persistent flags to v so that
// GITPULSE_OUTPUT and friends are honored alongside the command line.
func BindGlobalFlags(v *viper.Viper, cmd *cobra.Command) error {
	// Subcommands see the root's persistent flags only through Root().
	rootFlags := cmd.Root().PersistentFlags()
	for _, name := range boundFlags {
		if err := v.BindPFlag(name, rootFlags.Lookup(name)); err != nil {
			return err
		}
	}

	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()
	return nil
}

// ValidOutputFormats lists the values accepted by --output.
func ValidOutputFormats() []string {
	return []string{OutputText, OutputJSON}
}

// IsValidOutputFormat reports whether format is accepted by --output.
func IsValidOutputFormat(format string) bool {
	return slices.Contains(ValidOutputFormats(), format)
}

// ExitCodeForError maps a command error to the process exit code.
func ExitCodeForError(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.IsExitCode2Error(err),
		stderrors.Is(err, errors.ErrInvalidOutputFormat),
		stderrors.Is(err, errors.ErrInvalidArgument),
		isUsageError(err):
		return ExitInvalidInput
	case stderrors.Is(err, context.Canceled):
		return ExitInterrupted
	default:
		return ExitError
	}
}

func isUsageError(err error) bool {
	msg := err.Error()
	return slices.ContainsFunc(cobraUsageErrors, func(fragment string) bool {
		return strings.Contains(msg, fragment)
	})
}

// encodeJSONIndented writes v as two-space indented JSON.
func encodeJSONIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
