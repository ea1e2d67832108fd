// Package hooks records which handler runs for which event.
//
// A hook is a (handler, channel, key) triple, optionally owned by an actor
// class. Hooks are registered during a setup phase before dispatch starts
// and are append-only: there is no unregistration and no deduplication.
// Match returns hooks in registration order, which is also the order in
// which a dispatcher invokes them.
//
// Keys are built by Trigger constructors (WhenIReceive, WhenKeyPressed, and
// the micro:bit hat blocks in package microbit) which reject values outside
// their legal sets before anything is registered.
package hooks

import (
	"context"
	"sync"

	"github.com/roach88/pytch/internal/actor"
)

// Handler is the body run when a hook's event occurs. self is the instance
// the hook fires on, or nil for hooks without an owner.
type Handler func(ctx context.Context, self actor.Actor) error

// Hook is one registration.
type Hook struct {
	// Index is the registration position, starting at 0.
	Index int

	// Owner is the class whose instances receive the event, or nil.
	Owner *actor.Class

	Handler Handler
	Channel string
	Key     string
}

// Registry is an append-only list of hooks.
//
// Thread-safety: Register and Match are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	hooks []Hook
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends an owner-less hook and returns h unchanged, so the
// handler can still be called directly.
func (r *Registry) Register(h Handler, channel, key string) Handler {
	return r.RegisterOn(nil, h, channel, key)
}

// RegisterOn appends a hook owned by a class and returns h unchanged.
func (r *Registry) RegisterOn(owner *actor.Class, h Handler, channel, key string) Handler {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hooks = append(r.hooks, Hook{
		Index:   len(r.hooks),
		Owner:   owner,
		Handler: h,
		Channel: channel,
		Key:     key,
	})
	return h
}

// Match returns every hook for (channel, key) in registration order.
func (r *Registry) Match(channel, key string) []Hook {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Hook
	for _, h := range r.hooks {
		if h.Channel == channel && h.Key == key {
			out = append(out, h)
		}
	}
	return out
}

// Hooks returns a snapshot of all hooks in registration order.
func (r *Registry) Hooks() []Hook {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Hook, len(r.hooks))
	copy(out, r.hooks)
	return out
}

// Len returns the number of registered hooks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks)
}
