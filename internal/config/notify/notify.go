// Package notify fans out cache-invalidation events after configuration
// writes.
//
// The process keeps a cache of previously computed configuration; the
// reconciler must invalidate it once the settings file has been rewritten
// so subsequent reads observe the fresh values. Invalidation is modeled as
// an explicit observer registry rather than implicit global mutation.
package notify

import (
	"sync"
)

// Invalidator is notified when persisted configuration has changed.
type Invalidator interface {
	Invalidate()
}

// InvalidatorFunc adapts a function to the Invalidator interface.
type InvalidatorFunc func()

// Invalidate implements Invalidator.
func (f InvalidatorFunc) Invalidate() {
	f()
}

// Registry manages invalidation subscriptions.
type Registry struct {
	mu     sync.RWMutex
	subs   map[uint64]Invalidator
	nextID uint64
}

// NewRegistry creates an empty invalidation registry.
func NewRegistry() *Registry {
	return &Registry{subs: make(map[uint64]Invalidator)}
}

// Subscription represents an active invalidation subscription.
type Subscription struct {
	id       uint64
	registry *Registry
}

// Unsubscribe removes this subscription.
func (s *Subscription) Unsubscribe() {
	if s.registry != nil {
		s.registry.unsubscribe(s.id)
	}
}

// Subscribe registers an invalidator and returns its subscription.
func (r *Registry) Subscribe(inv Invalidator) *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.subs[id] = inv
	return &Subscription{id: id, registry: r}
}

func (r *Registry) unsubscribe(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, id)
}

// InvalidateAll notifies every subscriber synchronously.
func (r *Registry) InvalidateAll() {
	r.mu.RLock()
	subs := make([]Invalidator, 0, len(r.subs))
	for _, inv := range r.subs {
		subs = append(subs, inv)
	}
	r.mu.RUnlock()

	for _, inv := range subs {
		inv.Invalidate()
	}
}

// Len returns the number of active subscriptions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}
