// Package git runs git commands for gitpulse.
// This file defines the working tree status returned by Client.Status.
package git

import "sort"

// Status is a parsed `git status --porcelain --branch` snapshot.
type Status struct {
	Branch   string // Current branch, empty when detached
	Upstream string // Tracking branch, if any
	Ahead    int
	Behind   int

	Staged     []FileChange // Index differs from HEAD
	Unstaged   []FileChange // Working tree differs from the index
	Untracked  []string
	Conflicted []string // Unmerged paths during a merge, rebase or cherry-pick
}

// FileChange is one path in the index or working tree column of the status.
type FileChange struct {
	Path    string
	Status  ChangeType
	OldPath string // Source path of a rename or copy
}

// ChangeType is a porcelain status letter.
type ChangeType string

// Porcelain status letters.
const (
	ChangeAdded    ChangeType = "A"
	ChangeModified ChangeType = "M"
	ChangeDeleted  ChangeType = "D"
	ChangeRenamed  ChangeType = "R"
	ChangeCopied   ChangeType = "C"
	ChangeTypeOnly ChangeType = "T"
)

// unmergedPairs are the XY codes git uses for conflicted paths.
//
//nolint:gochecknoglobals // Immutable lookup table
var unmergedPairs = map[string]struct{}{
	"DD": {}, "AU": {}, "UD": {}, "UA": {}, "DU": {}, "AA": {}, "UU": {},
}

// IsClean reports whether nothing is staged, modified, untracked or conflicted.
func (s *Status) IsClean() bool {
	return len(s.Staged) == 0 && len(s.Unstaged) == 0 && len(s.Untracked) == 0 && len(s.Conflicted) == 0
}

// HasConflicts reports whether an operation left unmerged paths.
func (s *Status) HasConflicts() bool {
	return len(s.Conflicted) > 0
}

// Paths returns every path mentioned by the status, sorted and without duplicates.
// Rename sources are included since they disappeared from the working tree.
func (s *Status) Paths() []string {
	seen := make(map[string]struct{})
	add := func(p string) {
		if p != "" {
			seen[p] = struct{}{}
		}
	}
	for _, changes := range [][]FileChange{s.Staged, s.Unstaged} {
		for _, c := range changes {
			add(c.Path)
			add(c.OldPath)
		}
	}
	for _, p := range s.Untracked {
		add(p)
	}
	for _, p := range s.Conflicted {
		add(p)
	}

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
