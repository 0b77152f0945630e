// Package ctxutil provides context utility functions.
package ctxutil

import "context"

// Canceled checks if the context has been canceled or exceeded its deadline.
// Returns the context error if done (Canceled or DeadlineExceeded), nil otherwise.
// Operations call this at entry to avoid spawning work for an abandoned caller.
func Canceled(ctx context.Context) error {
	return ctx.Err()
}

// Detach returns a context that keeps the values of ctx (loggers, trace ids)
// but is never canceled. Shared work that outlives a single waiter runs under it.
func Detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
