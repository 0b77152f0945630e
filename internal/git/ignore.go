package git

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/gitpulse/internal/constants"
)

// IgnoreFilter removes git-ignored paths from a list. Long lists are split
// into batches that each fit the command-line budget and checked concurrently.
type IgnoreFilter struct {
	client *Client
	budget int
}

// NewIgnoreFilter creates a filter that asks git through client.
func NewIgnoreFilter(client *Client) *IgnoreFilter {
	return &IgnoreFilter{client: client, budget: constants.MaxGitCliLength}
}

// FilterIgnored returns paths that git does not ignore, in input order.
func (f *IgnoreFilter) FilterIgnored(ctx context.Context, paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	var (
		mu      sync.Mutex
		ignored = make(map[string]struct{})
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, batch := range batchPaths(paths, f.budget) {
		g.Go(func() error {
			res, err := f.client.CheckIgnore(gctx, batch)
			if err != nil {
				return err
			}
			mu.Lock()
			for _, p := range res {
				ignored[p] = struct{}{}
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	kept := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := ignored[p]; !ok {
			kept = append(kept, p)
		}
	}
	return kept, nil
}

// batchPaths splits paths so each batch's NUL-joined length stays within budget.
// A single path longer than the budget gets a batch of its own.
func batchPaths(paths []string, budget int) [][]string {
	var (
		batches [][]string
		current []string
		size    int
	)
	for _, p := range paths {
		n := len(p) + 1
		if len(current) > 0 && size+n > budget {
			batches = append(batches, current)
			current, size = nil, 0
		}
		current = append(current, p)
		size += n
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}
