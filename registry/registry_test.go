package registry_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/tailored-agentic-units/multicast/queue"
	"github.com/tailored-agentic-units/multicast/registry"
)

type listener struct {
	name    string
	expired bool
}

func (l *listener) Expired() bool { return l.expired }

type plain struct{ id int }

func newQueues(t *testing.T, n int) []*queue.Serial {
	t.Helper()
	qs := make([]*queue.Serial, n)
	for i := range qs {
		qs[i] = queue.NewSerial()
		t.Cleanup(qs[i].Stop)
	}
	return qs
}

func TestAdd_Idempotent(t *testing.T) {
	r := registry.New()
	qs := newQueues(t, 1)
	obs := &plain{id: 1}

	r.Add(obs, qs[0])
	r.Add(obs, qs[0])

	if got := r.Pairs(); got != 1 {
		t.Errorf("Pairs() = %d, want 1", got)
	}
	if got := r.Observers(); got != 1 {
		t.Errorf("Observers() = %d, want 1", got)
	}
}

func TestAdd_NilArgumentsNoOp(t *testing.T) {
	r := registry.New()
	qs := newQueues(t, 1)

	r.Add(nil, qs[0])
	r.Add(&plain{}, nil)

	if got := r.Pairs(); got != 0 {
		t.Errorf("Pairs() = %d, want 0", got)
	}
}

func TestAdd_UncomparableObserverNoOp(t *testing.T) {
	r := registry.New()
	qs := newQueues(t, 1)

	r.Add([]string{"not", "comparable"}, qs[0])

	if got := r.Pairs(); got != 0 {
		t.Errorf("Pairs() = %d, want 0", got)
	}
}

func TestRemove_SpecificQueue(t *testing.T) {
	r := registry.New()
	qs := newQueues(t, 2)
	obs := &plain{id: 1}

	r.Add(obs, qs[0])
	r.Add(obs, qs[1])
	r.Remove(obs, qs[0])

	if got := r.Pairs(); got != 1 {
		t.Errorf("Pairs() = %d, want 1", got)
	}
	if got := r.Observers(); got != 1 {
		t.Errorf("Observers() = %d, want 1", got)
	}
}

func TestRemove_LastQueueRemovesObserver(t *testing.T) {
	r := registry.New()
	qs := newQueues(t, 1)
	obs := &plain{id: 1}

	r.Add(obs, qs[0])
	r.Remove(obs, qs[0])

	if got := r.Observers(); got != 0 {
		t.Errorf("Observers() = %d, want 0", got)
	}
}

func TestRemove_NilQueueRemovesAllPairs(t *testing.T) {
	r := registry.New()
	qs := newQueues(t, 3)
	first := &plain{id: 1}
	second := &plain{id: 2}

	r.Add(first, qs[0])
	r.Add(first, qs[1])
	r.Add(first, qs[2])
	r.Add(second, qs[0])

	r.Remove(first, nil)

	if got := r.Pairs(); got != 1 {
		t.Errorf("Pairs() = %d, want 1", got)
	}
	if got := r.Observers(); got != 1 {
		t.Errorf("Observers() = %d, want 1", got)
	}
}

func TestRemove_UnknownObserverNoOp(t *testing.T) {
	r := registry.New()
	qs := newQueues(t, 1)
	r.Add(&plain{id: 1}, qs[0])

	r.Remove(&plain{id: 2}, nil)
	r.Remove(nil, nil)

	if got := r.Pairs(); got != 1 {
		t.Errorf("Pairs() = %d, want 1", got)
	}
}

func TestRemoveAll(t *testing.T) {
	r := registry.New()
	qs := newQueues(t, 2)
	r.Add(&plain{id: 1}, qs[0])
	r.Add(&plain{id: 2}, qs[1])

	r.RemoveAll()

	if got := r.Pairs(); got != 0 {
		t.Errorf("Pairs() = %d, want 0", got)
	}
}

func TestPairsWhere(t *testing.T) {
	r := registry.New()
	qs := newQueues(t, 2)
	tagged := &listener{name: "tagged"}
	other := &plain{id: 1}

	r.Add(tagged, qs[0])
	r.Add(tagged, qs[1])
	r.Add(other, qs[0])

	got := r.PairsWhere(func(obs any) bool {
		_, ok := obs.(*listener)
		return ok
	})
	if got != 2 {
		t.Errorf("PairsWhere() = %d, want 2", got)
	}
}

func TestAny(t *testing.T) {
	r := registry.New()
	qs := newQueues(t, 1)
	r.Add(&plain{id: 1}, qs[0])

	if !r.Any(func(obs any) bool { return true }) {
		t.Error("Any(true) = false, want true")
	}
	if r.Any(func(obs any) bool { return false }) {
		t.Error("Any(false) = true, want false")
	}
}

func TestEach_OrderAndEarlyStop(t *testing.T) {
	r := registry.New()
	qs := newQueues(t, 2)
	first := &plain{id: 1}
	second := &plain{id: 2}

	// first registers two queues, second one; traversal is observer
	// registration order, then queue insertion order.
	r.Add(first, qs[0])
	r.Add(first, qs[1])
	r.Add(second, qs[0])

	var visited []registry.Pair
	r.Each(func(obs any, q queue.Queue) bool {
		visited = append(visited, registry.Pair{Observer: obs, Queue: q})
		return true
	})

	want := []registry.Pair{
		{Observer: first, Queue: qs[0]},
		{Observer: first, Queue: qs[1]},
		{Observer: second, Queue: qs[0]},
	}
	if len(visited) != len(want) {
		t.Fatalf("visited %d pairs, want %d", len(visited), len(want))
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Errorf("visited[%d] = %+v, want %+v", i, visited[i], want[i])
		}
	}

	stops := 0
	r.Each(func(obs any, q queue.Queue) bool {
		stops++
		return false
	})
	if stops != 1 {
		t.Errorf("early-stop traversal visited %d pairs, want 1", stops)
	}
}

func TestEach_ReentrantMutation(t *testing.T) {
	r := registry.New()
	qs := newQueues(t, 1)
	first := &plain{id: 1}
	second := &plain{id: 2}

	r.Add(first, qs[0])
	r.Add(second, qs[0])

	third := &plain{id: 3}
	visited := 0
	r.Each(func(obs any, q queue.Queue) bool {
		visited++
		// Mutating from inside the traversal must not deadlock, and
		// must not affect the snapshot being walked.
		r.Remove(second, nil)
		r.Add(third, qs[0])
		return true
	})

	if visited != 2 {
		t.Errorf("visited = %d, want 2", visited)
	}
	if got := r.Observers(); got != 2 {
		t.Errorf("Observers() after traversal = %d, want 2", got)
	}
}

func TestPairsWhere_PredicateMayReenter(t *testing.T) {
	r := registry.New()
	qs := newQueues(t, 1)
	r.Add(&plain{id: 1}, qs[0])
	r.Add(&plain{id: 2}, qs[0])

	done := make(chan int, 1)
	go func() {
		done <- r.PairsWhere(func(obs any) bool {
			// A predicate that queries the registry must not deadlock.
			return r.Pairs() > 0
		})
	}()

	select {
	case got := <-done:
		if got != 2 {
			t.Errorf("PairsWhere() = %d, want 2", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("PairsWhere deadlocked on a reentrant predicate")
	}
}

func TestAny_PredicateMayReenter(t *testing.T) {
	r := registry.New()
	qs := newQueues(t, 1)
	r.Add(&plain{id: 1}, qs[0])

	done := make(chan bool, 1)
	go func() {
		done <- r.Any(func(obs any) bool {
			return r.Observers() > 0
		})
	}()

	select {
	case got := <-done:
		if !got {
			t.Error("Any() = false, want true")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Any deadlocked on a reentrant predicate")
	}
}

// reentrant reports expiry only after its owner flips the flag, and
// queries the registry from inside every Expired check.
type reentrant struct {
	registry *registry.Registry
	expired  atomic.Bool
}

func (o *reentrant) Expired() bool {
	o.registry.Pairs()
	return o.expired.Load()
}

func TestExpired_CheckMayReenter(t *testing.T) {
	r := registry.New()
	qs := newQueues(t, 1)
	obs := &reentrant{registry: r}
	r.Add(obs, qs[0])

	done := make(chan int, 1)
	go func() {
		done <- r.Observers()
	}()

	select {
	case got := <-done:
		if got != 1 {
			t.Errorf("Observers() = %d, want 1", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Observers deadlocked on a reentrant Expired check")
	}

	obs.expired.Store(true)
	if got := r.Observers(); got != 0 {
		t.Errorf("Observers() after expiry = %d, want 0", got)
	}
}

func TestExpired_ObserverUnreachable(t *testing.T) {
	r := registry.New()
	qs := newQueues(t, 1)
	live := &listener{name: "live"}
	dead := &listener{name: "dead"}

	r.Add(live, qs[0])
	r.Add(dead, qs[0])

	// Simulate the owner tearing the observer down.
	dead.expired = true

	if got := r.Observers(); got != 1 {
		t.Errorf("Observers() = %d, want 1", got)
	}
	r.Each(func(obs any, q queue.Queue) bool {
		if obs == dead {
			t.Error("expired observer reached through Each")
		}
		return true
	})
}
