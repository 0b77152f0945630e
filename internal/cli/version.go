package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/gitpulse/internal/constants"
	"github.com/mrz1836/gitpulse/internal/ctxutil"
	"github.com/mrz1836/gitpulse/internal/git"
)

// versionResult is the JSON shape of the version command.
type versionResult struct {
	Path    string `json:"path"`
	Version string `json:"version"`
	Minimum string `json:"minimum,omitempty"`
	AtLeast *bool  `json:"at_least,omitempty"`
}

// AddVersionCommand adds the version command to the root command.
func AddVersionCommand(root *cobra.Command, a *app) {
	var minimum string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the git executable and version in use",
		Long: `Resolve the git executable and report its version.

With --min, also report whether the installed git is at least that version.
Versions compare numerically, so 2.9.0 is older than 2.10.0.

Examples:
  gitpulse version
  gitpulse version --min 2.30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVersion(cmd.Context(), a, cmd.OutOrStdout(), minimum)
		},
	}
	cmd.Flags().StringVar(&minimum, "min", "", "minimum version to check against")

	root.AddCommand(cmd)
}

func runVersion(ctx context.Context, a *app, w io.Writer, minimum string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	exec := a.executor(GetLogger())
	path, err := exec.Path(ctx)
	if err != nil {
		return err
	}
	version, err := exec.Version(ctx)
	if err != nil {
		return err
	}

	if git.CompareVersions(version, constants.MinVersionGit) < 0 {
		logger := GetLogger()
		logger.Warn().
			Str("version", version).
			Str("minimum", constants.MinVersionGit).
			Msg("git is older than the oldest supported version")
	}

	res := versionResult{Path: path, Version: version}
	if minimum != "" {
		ok := exec.IsAtLeastVersion(ctx, minimum)
		res.Minimum = minimum
		res.AtLeast = &ok
	}

	if a.flags.Output == OutputJSON {
		return encodeJSONIndented(w, res)
	}

	_, err = fmt.Fprintf(w, "git %s (%s)\n", res.Version, res.Path)
	if err != nil || res.AtLeast == nil {
		return err
	}
	answer := "no"
	if *res.AtLeast {
		answer = "yes"
	}
	_, err = fmt.Fprintf(w, "at least %s: %s\n", res.Minimum, answer)
	return err
}
