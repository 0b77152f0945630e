// Package signal maps process signals onto gitpulse command lifecycles.
//
// Import rules:
//   - CAN import: std lib only
//   - MUST NOT import: internal packages (to avoid circular dependencies)
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler cancels its context on SIGINT or SIGTERM and reports toggle
// signals (SIGUSR1 on Unix) without cancelling anything.
//
// Usage:
//
//	h := signal.NewHandler(ctx)
//	defer h.Stop()
//
//	for {
//	    select {
//	    case <-h.Context().Done():
//	        return
//	    case <-h.Toggles():
//	        // pause or resume work
//	    }
//	}
type Handler struct {
	ctx         context.Context //nolint:containedctx // handler owns the context lifecycle
	cancel      context.CancelFunc
	interrupted chan struct{}
	toggles     chan struct{}
	done        chan struct{}
	once        sync.Once
	stopOnce    sync.Once
	sigChan     chan os.Signal
}

// NewHandler creates a handler listening for interrupt and toggle signals.
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		interrupted: make(chan struct{}),
		toggles:     make(chan struct{}, 1),
		done:        make(chan struct{}),
		// signal.Notify drops signals when the channel is full.
		sigChan: make(chan os.Signal, 1),
	}

	signals := append([]os.Signal{syscall.SIGINT, syscall.SIGTERM}, toggleSignals...)
	signal.Notify(h.sigChan, signals...)
	go h.listen()

	return h
}

// Context returns the context cancelled by an interrupt.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted returns a channel closed when an interrupt signal arrives.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// Toggles delivers one value per toggle signal. Toggles arriving while a
// previous one is unread are coalesced.
func (h *Handler) Toggles() <-chan struct{} {
	return h.toggles
}

// Stop stops listening and cancels the context. It is safe to call more than once.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigChan)
		close(h.done)
		h.cancel()
	})
}

func (h *Handler) handle(sig os.Signal) {
	if isToggle(sig) {
		select {
		case h.toggles <- struct{}{}:
		default:
		}
		return
	}

	h.once.Do(func() {
		h.cancel()
		close(h.interrupted)
	})
}

func (h *Handler) listen() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.done:
			return
		case sig := <-h.sigChan:
			h.handle(sig)
		}
	}
}

func isToggle(sig os.Signal) bool {
	for _, t := range toggleSignals {
		if sig == t {
			return true
		}
	}
	return false
}
