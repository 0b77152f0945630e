package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/gitpulse/internal/errors"
	"github.com/mrz1836/gitpulse/internal/git"
	"github.com/mrz1836/gitpulse/internal/signal"
	"github.com/mrz1836/gitpulse/internal/watch"
)

// WatchFlags holds flags specific to the watch command.
type WatchFlags struct {
	// Repo is any directory inside the repository to watch.
	Repo string
	// Files also reports working tree file changes.
	Files bool
}

// watchEnvelope tags streamed JSON events with their pipeline.
type watchEnvelope struct {
	Type  string `json:"type"`
	Event any    `json:"event"`
}

// AddWatchCommand adds the watch command to the root command.
func AddWatchCommand(root *cobra.Command, a *app) {
	flags := &WatchFlags{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream repository change events",
		Long: `Watch a repository and print debounced change events until interrupted.

Repository events list semantic change kinds (heads, index, remotes, ...).
With --files, working tree changes are printed as well, after removing
paths matched by .gitignore.

Send SIGUSR1 to suspend output; send it again to resume. Changes made while
suspended are delivered as one event per pipeline on resume.

Examples:
  gitpulse watch
  gitpulse watch --files --repo ~/src/project
  gitpulse watch -o json | jq .event.kinds`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h := signal.NewHandler(cmd.Context())
			defer h.Stop()
			return runWatch(h.Context(), a, cmd.OutOrStdout(), flags, h.Toggles())
		},
	}

	cmd.Flags().StringVar(&flags.Repo, "repo", ".", "directory inside the repository to watch")
	cmd.Flags().BoolVar(&flags.Files, "files", false, "also report working tree file changes")

	root.AddCommand(cmd)
}

func runWatch(ctx context.Context, a *app, w io.Writer, flags *WatchFlags, toggles <-chan struct{}) error {
	logger := GetLogger()
	exec := a.executor(logger)

	probe, err := git.NewClient(exec, flags.Repo)
	if err != nil {
		return err
	}
	root, err := probe.Root(ctx)
	if err != nil {
		return errors.Wrapf(err, "%s is not inside a git repository", flags.Repo)
	}
	client, err := git.NewClient(exec, root)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	events := make(chan watchEnvelope, 64)
	publish := func(env watchEnvelope) {
		select {
		case events <- env:
		case <-gctx.Done():
		}
	}

	n, err := watch.NewNotifier(root, logger,
		watch.WithDebounce(a.cfg.Watch.RepositoryDebounce, a.cfg.Watch.FileSystemDebounce),
		watch.WithReportFetchHead(!a.cfg.Watch.IgnoreFetchHead),
		watch.WithIgnoreFilter(git.NewIgnoreFilter(client)),
		watch.WithWatcherFactory(watch.NewFSWatcherFactory(logger)),
		watch.WithInvalidation(func(inv watch.Invalidation) {
			logger.Debug().Stringer("invalidate", inv).Msg("repository caches are stale")
		}),
	)
	if err != nil {
		return err
	}

	n.Subscribe(func(ev watch.ChangeEvent) {
		publish(watchEnvelope{Type: "repository", Event: ev})
	})

	if flags.Files {
		n.SubscribeFileSystem(func(ev watch.FileSystemChangeEvent) {
			publish(watchEnvelope{Type: "files", Event: ev})
		})
		lease, err := n.StartWatching()
		if err != nil {
			_ = n.Close()
			return err
		}
		defer lease.Stop()
	}

	logger.Info().
		Str("root", root).
		Bool("files", flags.Files).
		Msg("watching repository")

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case env := <-events:
				if err := writeWatchEvent(w, a.flags.Output, env); err != nil {
					return err
				}
			}
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-toggles:
				toggleSuspend(n, logger)
			}
		}
	})

	waitErr := g.Wait()
	closeErr := n.Close()
	return stderrors.Join(waitErr, closeErr)
}

func toggleSuspend(n *watch.Notifier, logger zerolog.Logger) {
	if n.Suspended() {
		logger.Info().Msg("resuming change notifications")
		n.Resume()
		return
	}
	logger.Info().Msg("suspending change notifications")
	n.Suspend()
}

func writeWatchEvent(w io.Writer, format string, env watchEnvelope) error {
	if format == OutputJSON {
		return json.NewEncoder(w).Encode(env)
	}
	_, err := fmt.Fprintf(w, "%s %v\n", env.Type, env.Event)
	return err
}
