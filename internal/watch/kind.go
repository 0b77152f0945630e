// Package watch turns raw file system activity in a git repository into
// debounced repository change notifications.
//
// Changes under the metadata directory are classified into ChangeKinds and
// coalesced by a Notifier, which emits one ChangeEvent per quiet window.
// Working-tree changes follow a separate, slower pipeline that drops
// git-ignored paths before emitting a FileSystemChangeEvent.
package watch

import (
	"sort"
	"strings"
)

// ChangeKind is a semantic category of repository change.
type ChangeKind string

// Change kinds. Closed, Ignored and Starred are raised by state transitions
// in the process; the rest come from watching the metadata directory.
const (
	KindUnknown         ChangeKind = "unknown"
	KindClosed          ChangeKind = "closed"
	KindIgnored         ChangeKind = "ignores"
	KindStarred         ChangeKind = "starred"
	KindCherryPick      ChangeKind = "cherrypick"
	KindConfig          ChangeKind = "config"
	KindHeads           ChangeKind = "heads"
	KindIndex           ChangeKind = "index"
	KindMerge           ChangeKind = "merge"
	KindRebase          ChangeKind = "rebase"
	KindRemotes         ChangeKind = "remotes"
	KindRemoteProviders ChangeKind = "providers"
	KindStash           ChangeKind = "stash"
	// KindStatus is the union of KindCherryPick, KindMerge and KindRebase.
	KindStatus    ChangeKind = "status"
	KindTags      ChangeKind = "tags"
	KindWorktrees ChangeKind = "worktrees"
)

// AllKinds lists every ChangeKind.
//
//nolint:gochecknoglobals // Immutable enumeration
var AllKinds = []ChangeKind{
	KindUnknown, KindClosed, KindIgnored, KindStarred, KindCherryPick, KindConfig,
	KindHeads, KindIndex, KindMerge, KindRebase, KindRemotes, KindRemoteProviders,
	KindStash, KindStatus, KindTags, KindWorktrees,
}

// statusRefinements are the kinds KindStatus summarizes.
//
//nolint:gochecknoglobals // Immutable enumeration
var statusRefinements = []ChangeKind{KindCherryPick, KindMerge, KindRebase}

// ParseChangeKind converts a kind name to a ChangeKind.
func ParseChangeKind(s string) (ChangeKind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range AllKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// RequiresWatching reports whether the kind is produced by file watching.
func (k ChangeKind) RequiresWatching() bool {
	switch k {
	case KindClosed, KindIgnored, KindStarred:
		return false
	default:
		return true
	}
}

// ComparisonMode selects how ChangeEvent.Changed matches requested kinds.
type ComparisonMode int

const (
	// Any matches when the event has at least one requested kind.
	Any ComparisonMode = iota
	// All matches when the event has every requested kind.
	All
	// Exclusive matches when the event has exactly the requested kinds,
	// treating KindStatus as the umbrella of its refinements.
	Exclusive
)

// String returns the mode name.
func (m ComparisonMode) String() string {
	switch m {
	case Any:
		return "any"
	case All:
		return "all"
	case Exclusive:
		return "exclusive"
	default:
		return "any"
	}
}

// KindSet is a set of change kinds.
type KindSet map[ChangeKind]struct{}

// NewKindSet creates a set from kinds.
func NewKindSet(kinds ...ChangeKind) KindSet {
	s := make(KindSet, len(kinds))
	s.Add(kinds...)
	return s
}

// Add inserts kinds into the set.
func (s KindSet) Add(kinds ...ChangeKind) {
	for _, k := range kinds {
		s[k] = struct{}{}
	}
}

// Remove deletes kinds from the set.
func (s KindSet) Remove(kinds ...ChangeKind) {
	for _, k := range kinds {
		delete(s, k)
	}
}

// Has reports whether k is in the set.
func (s KindSet) Has(k ChangeKind) bool {
	_, ok := s[k]
	return ok
}

// HasAny reports whether any of kinds is in the set.
func (s KindSet) HasAny(kinds ...ChangeKind) bool {
	for _, k := range kinds {
		if s.Has(k) {
			return true
		}
	}
	return false
}

// Clone returns a copy of the set.
func (s KindSet) Clone() KindSet {
	c := make(KindSet, len(s))
	for k := range s {
		c[k] = struct{}{}
	}
	return c
}

// Equal reports whether both sets hold the same kinds.
func (s KindSet) Equal(o KindSet) bool {
	if len(s) != len(o) {
		return false
	}
	for k := range s {
		if !o.Has(k) {
			return false
		}
	}
	return true
}

// Sorted returns the kinds in lexical order.
func (s KindSet) Sorted() []ChangeKind {
	out := make([]ChangeKind, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
