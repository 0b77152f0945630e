package watch

// Op is the kind of file system change.
type Op int

const (
	// OpCreated means the path was created.
	OpCreated Op = iota
	// OpChanged means the path's contents changed.
	OpChanged
	// OpDeleted means the path was removed or renamed away.
	OpDeleted
)

// String returns the operation name.
func (o Op) String() string {
	switch o {
	case OpCreated:
		return "created"
	case OpChanged:
		return "changed"
	case OpDeleted:
		return "deleted"
	default:
		return "changed"
	}
}

// FileEvent is one raw change reported by a Watcher.
type FileEvent struct {
	Path string
	Op   Op
}

// Watcher delivers raw file events for paths matching its patterns.
type Watcher interface {
	// Events delivers changes. It is closed when the watcher stops.
	Events() <-chan FileEvent

	// Errors delivers watcher failures. It is closed when the watcher stops.
	Errors() <-chan error

	// Close stops the watcher.
	Close() error
}

// WatcherFactory starts a watcher on root reporting paths that match
// patterns (repository-relative globs).
type WatcherFactory func(root string, patterns []string) (Watcher, error)
