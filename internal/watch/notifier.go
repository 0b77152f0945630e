package watch

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrz1836/gitpulse/internal/clock"
	"github.com/mrz1836/gitpulse/internal/constants"
	gperrors "github.com/mrz1836/gitpulse/internal/errors"
)

// IgnoreFilter removes git-ignored paths from a list.
type IgnoreFilter interface {
	FilterIgnored(ctx context.Context, paths []string) ([]string, error)
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithClock sets the clock driving debounce windows and timestamps.
func WithClock(c clock.Clock) Option {
	return func(n *Notifier) {
		n.clock = c
	}
}

// WithDebounce sets the quiet windows for the repository and file system pipelines.
// Non-positive values keep the defaults.
func WithDebounce(repository, fileSystem time.Duration) Option {
	return func(n *Notifier) {
		if repository > 0 {
			n.repositoryWait = repository
		}
		if fileSystem > 0 {
			n.fileSystemWait = fileSystem
		}
	}
}

// WithIgnoreFilter sets the filter applied to working-tree paths before emission.
func WithIgnoreFilter(f IgnoreFilter) Option {
	return func(n *Notifier) {
		n.filter = f
	}
}

// WithWatcherFactory sets how file watchers are created. Without one the
// notifier only reacts to paths fed to OnRepositoryPath and OnWorkingTreePath.
func WithWatcherFactory(f WatcherFactory) Option {
	return func(n *Notifier) {
		n.factory = f
	}
}

// WithInvalidation sets a callback run synchronously when a change makes
// repository caches stale, before the change is queued.
func WithInvalidation(fn func(Invalidation)) Option {
	return func(n *Notifier) {
		n.onInvalidate = fn
	}
}

// WithReportFetchHead reports FETCH_HEAD updates as remote changes.
func WithReportFetchHead(report bool) Option {
	return func(n *Notifier) {
		n.classifier.ReportFetchHead = report
	}
}

// Notifier coalesces changes in one repository into debounced events.
//
// Two pipelines run independently: classified metadata changes are emitted
// as ChangeEvents after the repository window, working-tree paths are
// emitted as FileSystemChangeEvents after the file system window. While
// suspended both pipelines accumulate without emitting; Resume flushes each
// pipeline that has pending data exactly once.
type Notifier struct {
	id             string
	root           string
	logger         zerolog.Logger
	clock          clock.Clock
	classifier     Classifier
	filter         IgnoreFilter
	factory        WatcherFactory
	onInvalidate   func(Invalidation)
	repositoryWait time.Duration
	fileSystemWait time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	repositoryDebounce *Debouncer
	fileSystemDebounce *Debouncer

	mu        sync.Mutex
	disposed  bool
	suspended bool
	closed    bool
	starred   bool
	updatedAt time.Time

	pendingKinds KindSet
	pendingPaths []string
	pathSeen     map[string]struct{}

	nextSub     int
	subscribers map[int]func(ChangeEvent)
	fsSubs      map[int]func(FileSystemChangeEvent)
	rawSubs     map[int]func(ChangeEvent)

	metadataWatcher Watcher
	treeWatcher     Watcher
	leases          int
	leaseGen        uint64 // Bumped by a forced stop to orphan older leases
	wg              sync.WaitGroup
}

// NewNotifier creates a notifier for the repository at root and starts its
// metadata watcher when a watcher factory is configured.
func NewNotifier(root string, logger zerolog.Logger, opts ...Option) (*Notifier, error) {
	if root == "" {
		return nil, gperrors.Wrap(gperrors.ErrEmptyValue, "repository root")
	}

	ctx, cancel := context.WithCancel(context.Background())
	n := &Notifier{
		id:             uuid.NewString(),
		root:           filepath.Clean(root),
		clock:          clock.RealClock{},
		classifier:     Classifier{},
		repositoryWait: constants.DefaultRepositoryDebounce,
		fileSystemWait: constants.DefaultFileSystemDebounce,
		ctx:            ctx,
		cancel:         cancel,
		subscribers:    make(map[int]func(ChangeEvent)),
		fsSubs:         make(map[int]func(FileSystemChangeEvent)),
		rawSubs:        make(map[int]func(ChangeEvent)),
		pathSeen:       make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}

	n.logger = logger.With().
		Str("component", "watch").
		Str("repository_id", n.id).
		Str("root", n.root).
		Logger()
	n.updatedAt = n.clock.Now()
	n.repositoryDebounce = NewDebouncer(n.clock, n.repositoryWait, n.flushRepository)
	n.fileSystemDebounce = NewDebouncer(n.clock, n.fileSystemWait, n.flushFileSystem)

	if n.factory != nil {
		w, err := n.factory(n.root, MetadataPatterns)
		if err != nil {
			cancel()
			return nil, gperrors.Wrap(err, "failed to watch repository metadata")
		}
		n.metadataWatcher = w
		n.wg.Add(1)
		go n.pump(w, n.OnRepositoryPath)
	}

	return n, nil
}

// ID identifies this notifier in emitted events.
func (n *Notifier) ID() string { return n.id }

// Root returns the repository root.
func (n *Notifier) Root() string { return n.root }

// UpdatedAt returns when the last change was recorded.
func (n *Notifier) UpdatedAt() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.updatedAt
}

// Suspended reports whether emissions are held back.
func (n *Notifier) Suspended() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.suspended
}

// Subscribe registers fn for debounced repository change events and returns
// a function that removes it. fn runs on the goroutine that flushes.
func (n *Notifier) Subscribe(fn func(ChangeEvent)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextSub
	n.nextSub++
	n.subscribers[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subscribers, id)
	}
}

// SubscribeFileSystem registers fn for filtered working-tree events and
// returns a function that removes it.
func (n *Notifier) SubscribeFileSystem(fn func(FileSystemChangeEvent)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextSub
	n.nextSub++
	n.fsSubs[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.fsSubs, id)
	}
}

// OnRawChange registers fn to run synchronously with every change before
// debouncing, including while suspended.
func (n *Notifier) OnRawChange(fn func(ChangeEvent)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextSub
	n.nextSub++
	n.rawSubs[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.rawSubs, id)
	}
}

// Suspend holds back emissions. Pending windows are cancelled; changes keep
// accumulating until Resume.
func (n *Notifier) Suspend() {
	n.mu.Lock()
	if n.disposed || n.suspended {
		n.mu.Unlock()
		return
	}
	n.suspended = true
	n.mu.Unlock()

	n.repositoryDebounce.Cancel()
	n.fileSystemDebounce.Cancel()
	n.logger.Debug().Msg("notifier suspended")
}

// Resume re-enables emissions and synchronously flushes each pipeline with
// pending data.
func (n *Notifier) Resume() {
	n.mu.Lock()
	if n.disposed || !n.suspended {
		n.mu.Unlock()
		return
	}
	n.suspended = false
	hasChanges := len(n.pendingKinds) > 0
	hasPaths := len(n.pendingPaths) > 0
	n.mu.Unlock()

	n.logger.Debug().
		Bool("pending_changes", hasChanges).
		Bool("pending_paths", hasPaths).
		Msg("notifier resumed")

	if hasChanges {
		n.repositoryDebounce.Flush()
	}
	if hasPaths {
		n.fileSystemDebounce.Flush()
	}
}

// RaiseChange queues kinds produced by an in-process state transition.
func (n *Notifier) RaiseChange(kinds ...ChangeKind) {
	if len(kinds) == 0 {
		return
	}

	n.mu.Lock()
	if n.disposed {
		n.mu.Unlock()
		return
	}
	n.updatedAt = n.clock.Now()
	if n.pendingKinds == nil {
		n.pendingKinds = NewKindSet()
	}
	n.pendingKinds.Add(kinds...)
	if !n.suspended {
		n.repositoryDebounce.Trigger()
	}
	raw := make([]func(ChangeEvent), 0, len(n.rawSubs))
	for _, id := range sortedIDs(n.rawSubs) {
		raw = append(raw, n.rawSubs[id])
	}
	at := n.updatedAt
	n.mu.Unlock()

	if len(raw) == 0 {
		return
	}
	ev := n.newChangeEvent(at, kinds...)
	for _, fn := range raw {
		fn(ev)
	}
}

// OnRepositoryPath classifies a changed metadata or ignore-file path and
// queues the resulting kinds.
func (n *Notifier) OnRepositoryPath(p string) {
	c := n.classifier.Classify(n.relative(p))
	if c.Skip {
		return
	}
	if c.Invalidate != InvalidateNone {
		n.invalidate(c.Invalidate)
	}
	n.RaiseChange(c.Kinds...)
}

// OnWorkingTreePath queues a changed working-tree path. Paths inside the
// metadata directory belong to the repository pipeline and are dropped.
func (n *Notifier) OnWorkingTreePath(p string) {
	rel := n.relative(p)
	if IsMetadataPath(rel) {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.disposed {
		return
	}
	n.updatedAt = n.clock.Now()
	if _, ok := n.pathSeen[p]; !ok {
		n.pathSeen[p] = struct{}{}
		n.pendingPaths = append(n.pendingPaths, p)
	}
	if !n.suspended {
		n.fileSystemDebounce.Trigger()
	}
}

// SetClosed records whether the repository is closed in the UI and raises
// KindClosed when the state actually changes.
func (n *Notifier) SetClosed(closed bool) {
	n.mu.Lock()
	if n.closed == closed {
		n.mu.Unlock()
		return
	}
	n.closed = closed
	n.mu.Unlock()

	n.RaiseChange(KindClosed)
}

// SetStarred records whether the repository is starred and raises
// KindStarred when the state actually changes.
func (n *Notifier) SetStarred(starred bool) {
	n.mu.Lock()
	if n.starred == starred {
		n.mu.Unlock()
		return
	}
	n.starred = starred
	n.mu.Unlock()

	n.RaiseChange(KindStarred)
}

// RemoteProvidersChanged drops remote caches and raises KindRemoteProviders.
func (n *Notifier) RemoteProvidersChanged() {
	n.invalidate(InvalidateRemotes)
	n.RaiseChange(KindRemoteProviders)
}

// Lease keeps the working-tree watcher alive until stopped.
type Lease struct {
	n    *Notifier
	gen  uint64
	once sync.Once
}

// Stop releases the lease. It is safe to call more than once, and it does
// nothing once a forced StopWatching has already dropped the lease.
func (l *Lease) Stop() {
	l.once.Do(func() {
		_ = l.n.release(false, l.gen)
	})
}

// StartWatching takes a lease on the working-tree watcher, creating the
// watcher on the first lease.
func (n *Notifier) StartWatching() (*Lease, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.disposed {
		return nil, gperrors.ErrNotifierClosed
	}

	if n.leases == 0 && n.factory != nil {
		w, err := n.factory(n.root, WorkingTreePatterns)
		if err != nil {
			return nil, gperrors.Wrap(err, "failed to watch working tree")
		}
		n.treeWatcher = w
		n.wg.Add(1)
		go n.pump(w, n.OnWorkingTreePath)
		n.logger.Debug().Msg("working tree watcher started")
	}
	n.leases++

	return &Lease{n: n, gen: n.leaseGen}, nil
}

// StopWatching releases one lease, or every lease when force is set. The
// working-tree watcher is closed once no lease remains. Leases taken before a
// forced stop become inert.
func (n *Notifier) StopWatching(force bool) error {
	n.mu.Lock()
	gen := n.leaseGen
	n.mu.Unlock()
	return n.release(force, gen)
}

func (n *Notifier) release(force bool, gen uint64) error {
	n.mu.Lock()
	if gen != n.leaseGen {
		n.mu.Unlock()
		return nil
	}
	if force {
		n.leases = 0
		n.leaseGen++
	} else if n.leases > 0 {
		n.leases--
	}
	var w Watcher
	if n.leases == 0 && n.treeWatcher != nil {
		w = n.treeWatcher
		n.treeWatcher = nil
	}
	n.mu.Unlock()

	if w == nil {
		return nil
	}
	n.logger.Debug().Bool("forced", force).Msg("working tree watcher stopped")
	return w.Close()
}

// Leases returns the number of active working-tree leases.
func (n *Notifier) Leases() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.leases
}

// Close stops both watchers and discards pending changes. Close is idempotent.
func (n *Notifier) Close() error {
	n.mu.Lock()
	if n.disposed {
		n.mu.Unlock()
		return nil
	}
	n.disposed = true
	watchers := []Watcher{n.metadataWatcher, n.treeWatcher}
	n.metadataWatcher = nil
	n.treeWatcher = nil
	n.leases = 0
	n.pendingKinds = nil
	n.pendingPaths = nil
	n.mu.Unlock()

	n.repositoryDebounce.Cancel()
	n.fileSystemDebounce.Cancel()
	n.cancel()

	var errs []error
	for _, w := range watchers {
		if w == nil {
			continue
		}
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	n.wg.Wait()

	return errors.Join(errs...)
}

func (n *Notifier) flushRepository() {
	n.mu.Lock()
	if n.disposed || n.suspended || len(n.pendingKinds) == 0 {
		n.mu.Unlock()
		return
	}
	kinds := n.pendingKinds
	n.pendingKinds = nil
	subs := make([]func(ChangeEvent), 0, len(n.subscribers))
	for _, id := range sortedIDs(n.subscribers) {
		subs = append(subs, n.subscribers[id])
	}
	n.mu.Unlock()

	now := n.clock.Now()
	var events []ChangeEvent
	// An ignore-file change is always delivered on its own.
	if kinds.Has(KindIgnored) {
		events = append(events, n.newChangeEvent(now, KindIgnored))
		kinds.Remove(KindIgnored)
	}
	if len(kinds) > 0 {
		events = append(events, n.newChangeEvent(now, kinds.Sorted()...))
	}

	for _, ev := range events {
		n.logger.Debug().Stringer("event", ev).Msg("repository changed")
		for _, fn := range subs {
			fn(ev)
		}
	}
}

func (n *Notifier) flushFileSystem() {
	n.mu.Lock()
	if n.disposed || n.suspended || len(n.pendingPaths) == 0 {
		n.mu.Unlock()
		return
	}
	paths := n.pendingPaths
	n.pendingPaths = nil
	n.pathSeen = make(map[string]struct{})
	subs := make([]func(FileSystemChangeEvent), 0, len(n.fsSubs))
	for _, id := range sortedIDs(n.fsSubs) {
		subs = append(subs, n.fsSubs[id])
	}
	n.mu.Unlock()

	if n.filter != nil {
		filtered, err := n.filter.FilterIgnored(n.ctx, paths)
		switch {
		case n.ctx.Err() != nil:
			return
		case err != nil:
			n.logger.Warn().Err(err).Int("paths", len(paths)).Msg("failed to filter ignored paths, emitting unfiltered")
		default:
			paths = filtered
		}
	}
	if len(paths) == 0 {
		return
	}

	ev := FileSystemChangeEvent{
		ID:           uuid.NewString(),
		RepositoryID: n.id,
		Root:         n.root,
		At:           n.clock.Now(),
		Paths:        paths,
	}
	n.logger.Debug().Int("paths", len(paths)).Msg("working tree changed")
	for _, fn := range subs {
		fn(ev)
	}
}

func (n *Notifier) newChangeEvent(at time.Time, kinds ...ChangeKind) ChangeEvent {
	ev := NewChangeEvent(n.id, n.root, kinds...)
	ev.ID = uuid.NewString()
	ev.At = at
	return ev
}

func (n *Notifier) invalidate(inv Invalidation) {
	if n.onInvalidate == nil {
		return
	}
	n.logger.Debug().Stringer("invalidate", inv).Msg("invalidating repository caches")
	n.onInvalidate(inv)
}

// relative converts p to a slash path relative to the repository root when
// it lies below it.
func (n *Notifier) relative(p string) string {
	if !filepath.IsAbs(p) {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(n.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

func (n *Notifier) pump(w Watcher, handle func(string)) {
	defer n.wg.Done()

	events, errs := w.Events(), w.Errors()
	for events != nil || errs != nil {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			handle(ev.Path)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			n.logger.Warn().Err(err).Msg("file watcher error")
		}
	}
}

func sortedIDs[T any](m map[int]T) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
