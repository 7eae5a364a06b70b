package queue

import (
	"runtime"
	"sync"
)

// Pool runs submitted work on a fixed set of workers. Items are
// dequeued in submission order but run concurrently, so Pool gives no
// in-order delivery guarantee unless size is 1; order-sensitive
// observers should register a Serial queue instead.
type Pool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	backlog []func()
	stopped bool
	wg      sync.WaitGroup
	once    sync.Once
}

// NewPool creates a Pool with the given number of workers. A size of
// zero or less uses GOMAXPROCS workers.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
		if size <= 0 {
			size = 1
		}
	}
	p := &Pool{}
	p.cond = sync.NewCond(&p.mu)
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

// Submit enqueues fn. Nil functions and submissions after Stop are
// dropped; Submit never blocks on worker availability.
func (p *Pool) Submit(fn func()) {
	if fn == nil {
		return
	}
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.backlog = append(p.backlog, fn)
	p.mu.Unlock()
	p.cond.Signal()
}

// Stop drains the backlog and waits for all workers to exit.
func (p *Pool) Stop() {
	p.once.Do(func() {
		p.mu.Lock()
		p.stopped = true
		p.mu.Unlock()
		p.cond.Broadcast()
		p.wg.Wait()
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for len(p.backlog) == 0 && !p.stopped {
			p.cond.Wait()
		}
		if len(p.backlog) == 0 {
			p.mu.Unlock()
			return
		}
		fn := p.backlog[0]
		p.backlog = p.backlog[1:]
		p.mu.Unlock()
		fn()
	}
}
