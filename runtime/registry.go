// Package runtime holds the live routing state and the background
// workers of the relay. It contains no business rules.
package runtime

import (
	"sync"

	"dm-relay/contract"
	"dm-relay/domain"
)

type connectionSet map[string]contract.EventSink

// Registry is the process-wide table mapping a user id to every live
// connection currently bound to their personal address. It is the one
// piece of state mutated by all connections concurrently, so every
// access goes through the RWMutex: a lookup during a concurrent
// register or unregister observes either the fully-old or fully-new
// state, never a partial one.
type Registry struct {
	mu          sync.RWMutex
	connections map[domain.UserID]connectionSet
}

func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[domain.UserID]connectionSet),
	}
}

// Register binds a connection sink to the user's personal address.
// Registering the same connection id twice is idempotent.
func (r *Registry) Register(userID domain.UserID, connectionID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.connections[userID]; !ok {
		r.connections[userID] = make(connectionSet)
	}
	r.connections[userID][connectionID] = sink
}

// Unregister removes one connection. Removing a connection that is not
// present is a no-op, which absorbs duplicate disconnect signals.
// Empty sets are dropped so the table does not grow with every user
// that ever connected.
func (r *Registry) Unregister(userID domain.UserID, connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.connections[userID]
	if !ok {
		return
	}
	delete(set, connectionID)
	if len(set) == 0 {
		delete(r.connections, userID)
	}
}

// SinksFor returns every live connection sink of the user. An offline
// user yields an empty result, never an error.
func (r *Registry) SinksFor(userID domain.UserID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.connections[userID]
	if !ok {
		return nil
	}
	sinks := make([]contract.EventSink, 0, len(set))
	for _, sink := range set {
		sinks = append(sinks, sink)
	}
	return sinks
}

// ConnectionCount returns the number of live connections across all
// users, for the heartbeat gauge.
func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, set := range r.connections {
		total += len(set)
	}
	return total
}
