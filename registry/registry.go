// Package registry implements the thread-safe table of
// (observer, queue) registrations behind a multicast delegate.
//
// Observers are held by identity, not ownership: the registry never
// keeps an observer alive on its own. Owners that cannot guarantee
// explicit removal implement Expirable; expired observers become
// unreachable through every traversal and count, and are pruned on the
// next operation.
//
// User code never runs inside the registry's critical section.
// Traversal visitors, count predicates, and Expired checks all
// evaluate over snapshots taken under the lock and released before the
// callback runs, so a callback may call back into any registry
// operation without deadlocking.
package registry

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/tailored-agentic-units/multicast/queue"
)

// Expirable lets an observer report that its owner has torn it down.
// An expired observer receives no further deliveries and disappears
// from counts and traversals. Implementing Expirable is the weak
// registration contract; explicit removal remains the primary
// deregistration path.
type Expirable interface {
	Expired() bool
}

// Pair is one (observer, queue) registration in a snapshot.
type Pair struct {
	Observer any
	Queue    queue.Queue
}

type node struct {
	observer any
	queues   []queue.Queue
}

type observerCount struct {
	observer any
	pairs    int
}

// Registry maps each observer to the ordered set of queues it
// registered. Observer identity is Go interface identity; register
// pointer values. The zero value is ready to use.
type Registry struct {
	mu      sync.Mutex
	nodes   []*node
	reaping atomic.Bool
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{}
}

// Add registers queue q for observer obs, creating the observer entry
// if new. Adding the same (observer, queue) pair twice is a no-op, as
// is a nil observer, a nil queue, or an observer of an uncomparable
// type.
func (r *Registry) Add(obs any, q queue.Queue) {
	if obs == nil || q == nil || !reflect.TypeOf(obs).Comparable() {
		return
	}
	r.reap()
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.nodes {
		if n.observer != obs {
			continue
		}
		for _, existing := range n.queues {
			if existing == q {
				return
			}
		}
		n.queues = append(n.queues, q)
		return
	}
	r.nodes = append(r.nodes, &node{observer: obs, queues: []queue.Queue{q}})
}

// Remove unregisters queue q for observer obs. A nil q removes the
// observer entirely, across all of its queues. An observer whose last
// queue is removed leaves the registry; an unregistered observer is a
// no-op.
func (r *Registry) Remove(obs any, q queue.Queue) {
	if obs == nil || !reflect.TypeOf(obs).Comparable() {
		return
	}
	r.reap()
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.nodes {
		if n.observer != obs {
			continue
		}
		if q != nil {
			for j, existing := range n.queues {
				if existing == q {
					n.queues = append(n.queues[:j], n.queues[j+1:]...)
					break
				}
			}
			if len(n.queues) > 0 {
				return
			}
		}
		r.nodes = append(r.nodes[:i], r.nodes[i+1:]...)
		return
	}
}

// RemoveAll clears the registry.
func (r *Registry) RemoveAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes = nil
}

// Pairs returns the total number of (observer, queue) registrations.
func (r *Registry) Pairs() int {
	r.reap()
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, n := range r.nodes {
		total += len(n.queues)
	}
	return total
}

// Observers returns the number of distinct registered observers.
func (r *Registry) Observers() int {
	r.reap()
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.nodes)
}

// PairsWhere sums the queue-set sizes of observers matching pred. The
// predicate runs outside the registry lock over a snapshot, so it may
// call back into the registry.
func (r *Registry) PairsWhere(pred func(obs any) bool) int {
	total := 0
	for _, c := range r.counts() {
		if pred(c.observer) {
			total += c.pairs
		}
	}
	return total
}

// Any reports whether some registered observer satisfies pred. Like
// PairsWhere, the predicate runs outside the lock.
func (r *Registry) Any(pred func(obs any) bool) bool {
	for _, c := range r.counts() {
		if pred(c.observer) {
			return true
		}
	}
	return false
}

// Each visits every (observer, queue) pair in observer registration
// order, then queue insertion order within each observer. Return false
// from fn to stop early. Visits run outside the registry lock over a
// snapshot taken when the traversal started, so fn may add or remove
// registrations; such mutations do not affect the ongoing traversal.
func (r *Registry) Each(fn func(obs any, q queue.Queue) bool) {
	for _, p := range r.Snapshot() {
		if !fn(p.Observer, p.Queue) {
			return
		}
	}
}

// Snapshot returns the current registrations as an ordered pair list.
func (r *Registry) Snapshot() []Pair {
	r.reap()
	r.mu.Lock()
	defer r.mu.Unlock()
	pairs := make([]Pair, 0, len(r.nodes))
	for _, n := range r.nodes {
		for _, q := range n.queues {
			pairs = append(pairs, Pair{Observer: n.observer, Queue: q})
		}
	}
	return pairs
}

// counts snapshots each observer with its queue-set size.
func (r *Registry) counts() []observerCount {
	r.reap()
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]observerCount, 0, len(r.nodes))
	for _, n := range r.nodes {
		out = append(out, observerCount{observer: n.observer, pairs: len(n.queues)})
	}
	return out
}

// reap drops observers that report expired. Expired runs outside the
// lock so it may call back into the registry; a reentrant or
// concurrent reap is skipped, deferring pruning to the next operation.
func (r *Registry) reap() {
	if !r.reaping.CompareAndSwap(false, true) {
		return
	}
	defer r.reaping.Store(false)

	r.mu.Lock()
	candidates := make([]Expirable, 0, len(r.nodes))
	for _, n := range r.nodes {
		if e, ok := n.observer.(Expirable); ok {
			candidates = append(candidates, e)
		}
	}
	r.mu.Unlock()

	var expired []any
	for _, e := range candidates {
		if e.Expired() {
			expired = append(expired, e)
		}
	}
	if len(expired) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, obs := range expired {
		for i, n := range r.nodes {
			if n.observer == obs {
				r.nodes = append(r.nodes[:i], r.nodes[i+1:]...)
				break
			}
		}
	}
}
