package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/gitpulse/internal/watch"
)

// classifyResult is the JSON shape of one classified path.
type classifyResult struct {
	Path       string             `json:"path"`
	Kinds      []watch.ChangeKind `json:"kinds"`
	Invalidate string             `json:"invalidate"`
	Skipped    bool               `json:"skipped"`
}

// AddClassifyCommand adds the classify command to the root command.
func AddClassifyCommand(root *cobra.Command, a *app) {
	root.AddCommand(&cobra.Command{
		Use:   "classify <path>...",
		Short: "Show which repository changes a path maps to",
		Long: `Classify repository paths the way the watcher does.

Paths are relative to the repository root, for example .git/HEAD or
.git/refs/heads/main. Paths outside .git classify as unknown, except
.gitignore files which classify as ignores.

Examples:
  gitpulse classify .git/index .git/refs/remotes/origin/main
  gitpulse classify -o json .git/rebase-merge/done`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd.OutOrStdout(), a, args)
		},
	})
}

func runClassify(w io.Writer, a *app, paths []string) error {
	classifier := watch.Classifier{ReportFetchHead: !a.cfg.Watch.IgnoreFetchHead}

	results := make([]classifyResult, 0, len(paths))
	for _, p := range paths {
		c := classifier.Classify(p)
		results = append(results, classifyResult{
			Path:       p,
			Kinds:      c.Kinds,
			Invalidate: c.Invalidate.String(),
			Skipped:    c.Skip,
		})
	}

	if a.flags.Output == OutputJSON {
		return encodeJSONIndented(w, results)
	}

	for _, r := range results {
		if r.Skipped {
			if _, err := fmt.Fprintf(w, "%s: skipped\n", r.Path); err != nil {
				return err
			}
			continue
		}
		kinds := make([]string, len(r.Kinds))
		for i, k := range r.Kinds {
			kinds[i] = string(k)
		}
		line := fmt.Sprintf("%s: %s", r.Path, strings.Join(kinds, ", "))
		if r.Invalidate != watch.InvalidateNone.String() {
			line += " (invalidates " + r.Invalidate + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
