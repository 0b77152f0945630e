package git

import (
	"sync"

	"github.com/mrz1836/gitpulse/internal/process"
)

// pendingCall is the shared handle every waiter on one CommandKey receives.
// result and err are written once, before done is closed.
type pendingCall struct {
	done     chan struct{}
	encoding string
	waiters  int

	result *process.Result
	err    error
}

// Registry tracks git commands that are currently running, keyed by
// Request.Key. At most one process runs per key; later callers attach to it.
type Registry struct {
	mu    sync.Mutex
	calls map[string]*pendingCall
}

// NewRegistry creates an empty in-flight registry.
func NewRegistry() *Registry {
	return &Registry{calls: make(map[string]*pendingCall)}
}

// acquire returns the pending call for key. leader is true when the caller
// created it and must start the process and call settle.
func (r *Registry) acquire(key, encoding string) (call *pendingCall, leader bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.calls[key]; ok {
		c.waiters++
		return c, false
	}

	c := &pendingCall{done: make(chan struct{}), encoding: encoding}
	r.calls[key] = c
	return c, true
}

// settle records the outcome, removes the key and wakes every waiter.
// It must be called exactly once per leader.
func (r *Registry) settle(key string, call *pendingCall, result *process.Result, err error) {
	r.mu.Lock()
	call.result = result
	call.err = err
	if r.calls[key] == call {
		delete(r.calls, key)
	}
	r.mu.Unlock()

	close(call.done)
}

// Len returns the number of commands in flight.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Waiters returns how many callers attached to the in-flight command for key,
// not counting the one that started it.
func (r *Registry) Waiters(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.calls[key]; ok {
		return c.waiters
	}
	return 0
}
