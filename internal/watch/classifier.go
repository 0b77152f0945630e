package watch

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/mrz1836/gitpulse/internal/constants"
)

// Invalidation names the repository caches a change makes stale.
type Invalidation int

const (
	// InvalidateNone leaves caches alone.
	InvalidateNone Invalidation = iota
	// InvalidateBranches drops cached branch data.
	InvalidateBranches
	// InvalidateRemotes drops cached remote data.
	InvalidateRemotes
	// InvalidateAll drops every repository cache.
	InvalidateAll
)

// String returns the invalidation name.
func (i Invalidation) String() string {
	switch i {
	case InvalidateNone:
		return "none"
	case InvalidateBranches:
		return "branches"
	case InvalidateRemotes:
		return "remotes"
	case InvalidateAll:
		return "all"
	default:
		return "none"
	}
}

// Classification is the outcome of classifying one changed path.
type Classification struct {
	// Kinds are the change kinds to raise. Empty when Skip is set.
	Kinds []ChangeKind

	// Invalidate names caches to drop before notifying.
	Invalidate Invalidation

	// Skip is set for paths whose changes are deliberately not reported.
	Skip bool
}

// metadataRule maps an entry of the metadata directory to change kinds.
// dir rules also match anything below the entry.
type metadataRule struct {
	entry      string
	dir        bool
	kinds      []ChangeKind
	invalidate Invalidation
	skip       bool
}

// metadataRules is ordered most specific first; the first match wins.
//
//nolint:gochecknoglobals // Immutable decision table
var metadataRules = []metadataRule{
	{entry: "config", kinds: []ChangeKind{KindConfig, KindRemotes}, invalidate: InvalidateAll},
	{entry: "index", kinds: []ChangeKind{KindIndex}},
	{entry: "HEAD", kinds: []ChangeKind{KindHeads}, invalidate: InvalidateBranches},
	{entry: "ORIG_HEAD", kinds: []ChangeKind{KindHeads}, invalidate: InvalidateBranches},
	{entry: "FETCH_HEAD", skip: true},
	{entry: "CHERRY_PICK_HEAD", kinds: []ChangeKind{KindCherryPick, KindStatus}},
	{entry: "MERGE_HEAD", kinds: []ChangeKind{KindMerge, KindStatus}},
	{entry: "REBASE_HEAD", kinds: []ChangeKind{KindRebase, KindStatus}},
	{entry: "rebase-merge", dir: true, kinds: []ChangeKind{KindRebase, KindStatus}},
	{entry: "refs/heads", dir: true, kinds: []ChangeKind{KindHeads}, invalidate: InvalidateBranches},
	{entry: "refs/remotes", dir: true, kinds: []ChangeKind{KindRemotes}, invalidate: InvalidateAll},
	{entry: "refs/stash", kinds: []ChangeKind{KindStash}},
	{entry: "refs/tags", dir: true, kinds: []ChangeKind{KindTags}},
	{entry: "worktrees", dir: true, kinds: []ChangeKind{KindWorktrees}},
}

// Classifier maps changed paths to change kinds.
type Classifier struct {
	// ReportFetchHead reports FETCH_HEAD updates as KindRemotes instead of skipping them.
	ReportFetchHead bool
}

// Classify maps a changed path to change kinds. Paths are compared with
// forward slashes; the metadata directory is found by its ".git" segment.
// A path matching no rule yields KindUnknown.
func (c Classifier) Classify(p string) Classification {
	p = filepath.ToSlash(p)

	if path.Base(p) == constants.GitIgnoreFile {
		return Classification{Kinds: []ChangeKind{KindIgnored}}
	}

	rel, ok := metadataRelative(p)
	if !ok {
		return Classification{Kinds: []ChangeKind{KindUnknown}}
	}
	// Lock files stand for the entry they guard.
	rel = strings.TrimSuffix(rel, ".lock")

	for _, rule := range metadataRules {
		if rel != rule.entry && (!rule.dir || !strings.HasPrefix(rel, rule.entry+"/")) {
			continue
		}
		if rule.skip {
			if rule.entry == "FETCH_HEAD" && c.ReportFetchHead {
				return Classification{Kinds: []ChangeKind{KindRemotes}}
			}
			return Classification{Skip: true}
		}
		return Classification{Kinds: rule.kinds, Invalidate: rule.invalidate}
	}

	return Classification{Kinds: []ChangeKind{KindUnknown}}
}

// metadataRelative returns p relative to the first ".git" directory in it.
func metadataRelative(p string) (string, bool) {
	marker := constants.GitDir + "/"
	if strings.HasPrefix(p, marker) {
		return p[len(marker):], true
	}
	if i := strings.Index(p, "/"+marker); i >= 0 {
		return p[i+len(marker)+1:], true
	}
	return "", false
}

// IsMetadataPath reports whether p lies in a ".git" directory.
func IsMetadataPath(p string) bool {
	p = filepath.ToSlash(p)
	if p == constants.GitDir || strings.HasSuffix(p, "/"+constants.GitDir) {
		return true
	}
	_, ok := metadataRelative(p)
	return ok
}

// MetadataPatterns are the repository-relative globs the metadata watcher reports.
//
//nolint:gochecknoglobals // Immutable pattern list
var MetadataPatterns = []string{
	".git/config",
	".git/index",
	".git/HEAD",
	".git/*_HEAD",
	".git/MERGE_*",
	".git/refs/**",
	".git/rebase-merge",
	".git/rebase-merge/**",
	".git/sequencer/**",
	".git/worktrees",
	".git/worktrees/**",
	"**/.gitignore",
}

// WorkingTreePatterns are the repository-relative globs the working-tree watcher reports.
//
//nolint:gochecknoglobals // Immutable pattern list
var WorkingTreePatterns = []string{"**"}
