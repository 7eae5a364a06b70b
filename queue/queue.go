// Package queue provides the asynchronous work queues multicast
// deliveries run on. A Queue is FIFO from the submitter's point of
// view; Serial additionally runs work one item at a time, which is
// what gives a (observer, queue) pair its in-order delivery guarantee.
package queue

import "sync"

// Queue is an ordered asynchronous work queue. Submit enqueues fn and
// returns without waiting for it to run; implementations must not
// block the submitter on queue capacity.
type Queue interface {
	Submit(fn func())
}

// Serial runs submitted work on a single goroutine in strict
// submission order. The backlog is unbounded, so Submit never blocks.
type Serial struct {
	mu      sync.Mutex
	cond    *sync.Cond
	backlog []func()
	stopped bool
	done    chan struct{}
}

// NewSerial creates a Serial queue and starts its worker goroutine.
func NewSerial() *Serial {
	s := &Serial{done: make(chan struct{})}
	s.cond = sync.NewCond(&s.mu)
	go s.run()
	return s
}

// Submit enqueues fn. Nil functions and submissions after Stop are
// dropped.
func (s *Serial) Submit(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.backlog = append(s.backlog, fn)
	s.mu.Unlock()
	s.cond.Signal()
}

// Len returns the number of items waiting to run.
func (s *Serial) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.backlog)
}

// Stop drains the backlog and stops the worker. Stop blocks until work
// submitted before it has finished running; later submissions are
// dropped.
func (s *Serial) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.cond.Signal()
	<-s.done
}

func (s *Serial) run() {
	defer close(s.done)
	for {
		s.mu.Lock()
		for len(s.backlog) == 0 && !s.stopped {
			s.cond.Wait()
		}
		if len(s.backlog) == 0 {
			s.mu.Unlock()
			return
		}
		fn := s.backlog[0]
		s.backlog = s.backlog[1:]
		s.mu.Unlock()
		fn()
	}
}

var (
	mainOnce  sync.Once
	mainQueue *Serial
)

// Main returns the process-wide default queue, created on first use.
// It is the queue AddObserver registers when the caller does not name
// one, standing in for the host environment's main queue.
func Main() *Serial {
	mainOnce.Do(func() {
		mainQueue = NewSerial()
	})
	return mainQueue
}
