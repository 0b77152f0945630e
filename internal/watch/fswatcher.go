package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/moby/patternmatcher"
	"github.com/rs/zerolog"

	gperrors "github.com/mrz1836/gitpulse/internal/errors"
)

// skippedDirs are repository-relative directories never watched: object
// storage churns constantly and none of it maps to a change kind.
//
//nolint:gochecknoglobals // Immutable list
var skippedDirs = []string{
	".git/objects",
	".git/logs",
	".git/lfs",
	".git/modules",
}

// FSWatcher is a recursive fsnotify watcher filtered by glob patterns.
// fsnotify watches single directories, so every directory below root is
// added up front and new directories are added as they appear.
type FSWatcher struct {
	root    string
	watcher *fsnotify.Watcher
	logger  zerolog.Logger

	matchMu sync.Mutex
	matcher *patternmatcher.PatternMatcher
	skip    []string

	events    chan FileEvent
	errs      chan error
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewFSWatcherFactory returns a WatcherFactory producing FSWatchers. Working
// tree watchers (matching "**") skip the metadata directory entirely.
func NewFSWatcherFactory(logger zerolog.Logger) WatcherFactory {
	return func(root string, patterns []string) (Watcher, error) {
		return NewFSWatcher(root, patterns, logger)
	}
}

// NewFSWatcher starts watching root.
func NewFSWatcher(root string, patterns []string, logger zerolog.Logger) (*FSWatcher, error) {
	matcher, err := patternmatcher.New(patterns)
	if err != nil {
		return nil, fmt.Errorf("invalid watch patterns: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	skip := append([]string(nil), skippedDirs...)
	if watchesWorkingTree(patterns) {
		skip = append(skip, ".git")
	}

	fw := &FSWatcher{
		root:    root,
		watcher: w,
		logger:  logger.With().Str("component", "watch").Str("root", root).Logger(),
		matcher: matcher,
		skip:    skip,
		events:  make(chan FileEvent, 256),
		errs:    make(chan error, 16),
		done:    make(chan struct{}),
	}

	if err := fw.addTree(root); err != nil {
		_ = w.Close()
		return nil, err
	}

	fw.wg.Add(1)
	go fw.loop()
	return fw, nil
}

// Events implements Watcher.
func (fw *FSWatcher) Events() <-chan FileEvent { return fw.events }

// Errors implements Watcher.
func (fw *FSWatcher) Errors() <-chan error { return fw.errs }

// Close implements Watcher.
func (fw *FSWatcher) Close() error {
	var err error
	fw.closeOnce.Do(func() {
		close(fw.done)
		err = fw.watcher.Close()
		fw.wg.Wait()
		close(fw.events)
		close(fw.errs)
	})
	return err
}

func (fw *FSWatcher) loop() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.done:
			return

		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handle(ev)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.sendError(err)
		}
	}
}

func (fw *FSWatcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := fw.addTree(ev.Name); err != nil {
				fw.sendError(err)
			}
		}
	}

	op, ok := translateOp(ev)
	if !ok {
		return
	}

	// patternmatcher works on native separators.
	rel, err := filepath.Rel(fw.root, ev.Name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return
	}

	fw.matchMu.Lock()
	matched, err := fw.matcher.MatchesOrParentMatches(rel)
	fw.matchMu.Unlock()
	if err != nil {
		fw.sendError(err)
		return
	}
	if !matched {
		return
	}

	select {
	case fw.events <- FileEvent{Path: ev.Name, Op: op}:
	case <-fw.done:
	}
}

func (fw *FSWatcher) sendError(err error) {
	select {
	case fw.errs <- err:
	case <-fw.done:
	default:
		fw.logger.Warn().Err(err).Msg("dropping watcher error, receiver is not keeping up")
	}
}

// addTree watches dir and every directory below it that is not skipped.
func (fw *FSWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Directories can vanish between the event and the walk.
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if fw.skipped(p) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(p); err != nil {
			if errors.Is(err, fsnotify.ErrClosed) {
				return gperrors.ErrWatcherClosed
			}
			fw.logger.Debug().Err(err).Str("dir", p).Msg("failed to watch directory")
		}
		return nil
	})
}

func (fw *FSWatcher) skipped(p string) bool {
	rel, err := filepath.Rel(fw.root, p)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, s := range fw.skip {
		if rel == s {
			return true
		}
	}
	return false
}

func translateOp(ev fsnotify.Event) (Op, bool) {
	switch {
	case ev.Has(fsnotify.Create):
		return OpCreated, true
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return OpDeleted, true
	case ev.Has(fsnotify.Write):
		return OpChanged, true
	default:
		// Chmod alone never changes repository state.
		return 0, false
	}
}

func watchesWorkingTree(patterns []string) bool {
	for _, p := range patterns {
		if p == "**" {
			return true
		}
	}
	return false
}

// Ensure FSWatcher implements Watcher.
var _ Watcher = (*FSWatcher)(nil)
