package runtime

import (
	"sort"
	"sync"

	"dm-lab/contract"
)

// Registry maps a user id to its single live connection sink.
//
// One connection per user is assumed: registering a new sink for an already
// connected user replaces the previous entry (last-connect-wins). Widening
// the value to a set of sinks would be the multi-device extension point.
//
// Every mutation signals a coalescing change channel so that a single owner
// (the presence worker) can rebroadcast the online snapshot. Registry is
// safe for concurrent use by multiple goroutines.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]contract.ConnectionSink
	changed  chan struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]contract.ConnectionSink),
		changed:  make(chan struct{}, 1),
	}
}

// Register binds a user to its live sink, replacing any previous entry.
func (r *Registry) Register(userID string, sink contract.ConnectionSink) {
	r.mu.Lock()
	r.sessions[userID] = sink
	r.mu.Unlock()

	r.notify()
}

// Unregister removes the entry only if it still holds the given sink.
// A disconnect of a stale connection racing a newer connect for the same
// user must not evict the newer entry.
func (r *Registry) Unregister(userID string, sink contract.ConnectionSink) {
	r.mu.Lock()
	current, ok := r.sessions[userID]
	if ok && current == sink {
		delete(r.sessions, userID)
	} else {
		// Stale disconnect, nothing to announce
		ok = false
	}
	r.mu.Unlock()

	if ok {
		r.notify()
	}
}

// Lookup resolves a user id into its live sink, if any.
func (r *Registry) Lookup(userID string) (contract.ConnectionSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.sessions[userID]
	return sink, ok
}

// OnlineUsers returns a sorted snapshot of all connected user ids.
func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]string, 0, len(r.sessions))
	for userID := range r.sessions {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users
}

// Sinks returns a snapshot of every live sink, for full fan-out.
func (r *Registry) Sinks() []contract.ConnectionSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sinks := make([]contract.ConnectionSink, 0, len(r.sessions))
	for _, sink := range r.sessions {
		sinks = append(sinks, sink)
	}
	return sinks
}

// Changed delivers one signal per batch of registry mutations.
func (r *Registry) Changed() <-chan struct{} {
	return r.changed
}

// notify is non-blocking: a pending signal already guarantees that the next
// broadcast will snapshot state at least as new as this mutation.
func (r *Registry) notify() {
	select {
	case r.changed <- struct{}{}:
	default:
	}
}
