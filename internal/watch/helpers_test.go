package watch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/gitpulse/internal/testutil"
)

const testRoot = "/work/repo"

// fakeWatcher is a Watcher fed by the test.
type fakeWatcher struct {
	patterns []string
	events   chan FileEvent
	errs     chan error
	once     sync.Once
	mu       sync.Mutex
	closed   bool
}

func newFakeWatcher(patterns []string) *fakeWatcher {
	return &fakeWatcher{
		patterns: patterns,
		events:   make(chan FileEvent, 16),
		errs:     make(chan error, 16),
	}
}

func (w *fakeWatcher) Events() <-chan FileEvent { return w.events }
func (w *fakeWatcher) Errors() <-chan error     { return w.errs }

func (w *fakeWatcher) Close() error {
	w.once.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		close(w.events)
		close(w.errs)
	})
	return nil
}

func (w *fakeWatcher) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// fakeFactory records every watcher it creates.
type fakeFactory struct {
	mu       sync.Mutex
	watchers []*fakeWatcher
	err      error
}

func (f *fakeFactory) New(_ string, patterns []string) (Watcher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	w := newFakeWatcher(patterns)
	f.watchers = append(f.watchers, w)
	return w, nil
}

func (f *fakeFactory) created() []*fakeWatcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*fakeWatcher(nil), f.watchers...)
}

// filterFunc adapts a function to IgnoreFilter.
type filterFunc func(ctx context.Context, paths []string) ([]string, error)

func (f filterFunc) FilterIgnored(ctx context.Context, paths []string) ([]string, error) {
	return f(ctx, paths)
}

// recorder collects emitted events.
type recorder struct {
	mu      sync.Mutex
	changes []ChangeEvent
	files   []FileSystemChangeEvent
}

func (r *recorder) onChange(ev ChangeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, ev)
}

func (r *recorder) onFiles(ev FileSystemChangeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files = append(r.files, ev)
}

func (r *recorder) changeEvents() []ChangeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ChangeEvent(nil), r.changes...)
}

func (r *recorder) fileEvents() []FileSystemChangeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]FileSystemChangeEvent(nil), r.files...)
}

func newTestNotifier(t *testing.T, opts ...Option) (*Notifier, *testutil.FakeClock, *recorder) {
	t.Helper()

	clk := testutil.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	opts = append([]Option{WithClock(clk)}, opts...)
	n, err := NewNotifier(testRoot, zerolog.Nop(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = n.Close() })

	rec := &recorder{}
	n.Subscribe(rec.onChange)
	n.SubscribeFileSystem(rec.onFiles)
	return n, clk, rec
}
