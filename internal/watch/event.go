package watch

import (
	"encoding/json"
	"strings"
	"time"
)

// ChangeEvent is a coalesced set of repository changes.
type ChangeEvent struct {
	// ID uniquely identifies the emission.
	ID string

	// RepositoryID identifies the Notifier that emitted the event.
	RepositoryID string

	// Root is the repository working tree root.
	Root string

	// At is when the event was emitted.
	At time.Time

	kinds KindSet
}

// NewChangeEvent creates an event holding kinds.
func NewChangeEvent(repositoryID, root string, kinds ...ChangeKind) ChangeEvent {
	return ChangeEvent{RepositoryID: repositoryID, Root: root, kinds: NewKindSet(kinds...)}
}

// Kinds returns the event's kinds in lexical order.
func (e ChangeEvent) Kinds() []ChangeKind {
	return e.kinds.Sorted()
}

// Has reports whether the event contains k.
func (e ChangeEvent) Has(k ChangeKind) bool {
	return e.kinds.Has(k)
}

// With returns a copy of the event with kinds added.
func (e ChangeEvent) With(kinds ...ChangeKind) ChangeEvent {
	out := e
	out.kinds = e.kinds.Clone()
	out.kinds.Add(kinds...)
	return out
}

// Changed reports whether the event is relevant to a subscriber interested
// in kinds, under mode.
//
// In Exclusive mode KindStatus stands for its refinements (cherry-pick,
// merge and rebase). When KindStatus is requested without any refinement, the
// event's refinements are dropped before comparing. When neither KindStatus
// nor a refinement is requested, the event's refinements collapse into
// KindStatus. The resulting set must then equal the requested set.
func (e ChangeEvent) Changed(mode ComparisonMode, kinds ...ChangeKind) bool {
	requested := NewKindSet(kinds...)

	switch mode {
	case All:
		for k := range requested {
			if !e.kinds.Has(k) {
				return false
			}
		}
		return true

	case Exclusive:
		changes := e.kinds.Clone()
		refinementRequested := requested.HasAny(statusRefinements...)

		switch {
		case requested.Has(KindStatus) && !refinementRequested:
			changes.Remove(statusRefinements...)
		case !requested.Has(KindStatus) && !refinementRequested:
			if changes.HasAny(statusRefinements...) {
				changes.Remove(statusRefinements...)
				changes.Add(KindStatus)
			}
		}
		return changes.Equal(requested)

	case Any:
		return e.kinds.HasAny(kinds...)

	default:
		return e.kinds.HasAny(kinds...)
	}
}

// String renders the event for logs.
func (e ChangeEvent) String() string {
	return "{ repository: " + e.Root + ", changes: " + joinKinds(e.Kinds()) + " }"
}

// MarshalJSON implements json.Marshaler.
func (e ChangeEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID           string       `json:"id"`
		RepositoryID string       `json:"repository_id"`
		Root         string       `json:"root"`
		At           time.Time    `json:"at"`
		Kinds        []ChangeKind `json:"kinds"`
	}{e.ID, e.RepositoryID, e.Root, e.At, e.Kinds()})
}

func joinKinds(kinds []ChangeKind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}

// FileSystemChangeEvent lists working-tree paths that changed during one
// quiet window, after git-ignored paths were removed.
type FileSystemChangeEvent struct {
	ID           string    `json:"id"`
	RepositoryID string    `json:"repository_id"`
	Root         string    `json:"root"`
	At           time.Time `json:"at"`
	Paths        []string  `json:"paths"`
}

// String renders the event for logs.
func (e FileSystemChangeEvent) String() string {
	return "{ repository: " + e.Root + ", paths: " + strings.Join(e.Paths, ", ") + " }"
}
