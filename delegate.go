package multicast

import (
	"context"
	"fmt"
	"time"

	"github.com/tailored-agentic-units/multicast/call"
	"github.com/tailored-agentic-units/multicast/observability"
	"github.com/tailored-agentic-units/multicast/queue"
	"github.com/tailored-agentic-units/multicast/registry"
)

// Delegate is the multicast dispatch proxy. It owns one registry of
// (observer, queue) pairs and turns each intercepted call into one
// independent asynchronous delivery per matching pair.
//
// A Delegate must be created with New or NewWithConfig; the zero value
// has no registry, metrics, or event sink and is not usable.
type Delegate struct {
	name     string
	reg      *registry.Registry
	fallback queue.Queue
	events   observability.Observer
	metrics  *Metrics
	ctx      context.Context
}

// New creates a Delegate with default configuration. ctx is attached
// to emitted events and typed deliveries for the delegate's lifetime.
func New(ctx context.Context) *Delegate {
	return NewWithConfig(ctx, Config{})
}

// NewWithConfig creates a Delegate after merging cfg over defaults.
func NewWithConfig(ctx context.Context, cfg Config) *Delegate {
	merged := DefaultConfig()
	merged.Merge(&cfg)

	return &Delegate{
		name:     merged.Name,
		reg:      registry.New(),
		fallback: merged.DefaultQueue,
		events:   merged.Events,
		metrics:  NewMetrics(),
		ctx:      ctx,
	}
}

// AddObserver registers obs on the default queue.
func (d *Delegate) AddObserver(obs any) {
	d.AddObserverOn(obs, d.fallback)
}

// AddObserverOn registers obs to receive deliveries on q. Nil
// arguments no-op; re-adding an existing (observer, queue) pair is
// idempotent.
func (d *Delegate) AddObserverOn(obs any, q queue.Queue) {
	if obs == nil || q == nil {
		return
	}
	d.reg.Add(obs, q)
	d.emit(EventObserverAdded, observability.LevelVerbose, map[string]any{
		"observer": fmt.Sprintf("%T", obs),
		"pairs":    d.reg.Pairs(),
	})
}

// RemoveObserver unregisters obs from every queue it registered.
func (d *Delegate) RemoveObserver(obs any) {
	d.RemoveObserverFrom(obs, nil)
}

// RemoveObserverFrom unregisters obs from q only; a nil q removes the
// observer entirely. Unknown observers no-op.
func (d *Delegate) RemoveObserverFrom(obs any, q queue.Queue) {
	if obs == nil {
		return
	}
	d.reg.Remove(obs, q)
	d.emit(EventObserverRemoved, observability.LevelVerbose, map[string]any{
		"observer": fmt.Sprintf("%T", obs),
		"pairs":    d.reg.Pairs(),
	})
}

// RemoveAllObservers clears the registry.
func (d *Delegate) RemoveAllObservers() {
	d.reg.RemoveAll()
}

// Count returns the number of (observer, queue) registrations.
func (d *Delegate) Count() int {
	return d.reg.Pairs()
}

// CountObservers returns the number of distinct observers.
func (d *Delegate) CountObservers() int {
	return d.reg.Observers()
}

// CountWhere sums the queue counts of observers matching pred.
func (d *Delegate) CountWhere(pred func(obs any) bool) int {
	return d.reg.PairsWhere(pred)
}

// CountResponders returns the number of (observer, queue) pairs whose
// observer responds to the given selector.
func (d *Delegate) CountResponders(method string) int {
	return d.reg.PairsWhere(func(obs any) bool {
		return respondsTo(obs, method)
	})
}

// HasResponder reports whether any observer responds to the selector.
func (d *Delegate) HasResponder(method string) bool {
	return d.reg.Any(func(obs any) bool {
		return respondsTo(obs, method)
	})
}

// Each visits every (observer, queue) pair in registration order.
// Return false from fn to stop. fn runs outside the registry lock and
// may call back into the delegate.
func (d *Delegate) Each(fn func(obs any, q queue.Queue) bool) {
	d.reg.Each(fn)
}

// Call intercepts a void method invocation and fans it out. It builds
// the call descriptor, duplicates it once per matching
// (observer, queue) pair, and submits each duplicate to its pair's
// queue. Call returns once every delivery is enqueued; the deliveries
// themselves run later, on their queues, never on the caller.
//
// A call no observer responds to returns nil. The only error is an
// argument the descriptor cannot duplicate, reported synchronously
// before anything is submitted.
func (d *Delegate) Call(method string, args ...call.Arg) error {
	return d.Invoke(call.New(method, args...))
}

// Invoke dispatches an already-built call. See Call.
func (d *Delegate) Invoke(c *call.Call) error {
	if err := c.Validate(); err != nil {
		d.metrics.RecordArgumentFailure(1)
		d.emit(EventError, observability.LevelError, map[string]any{
			"call_id": c.ID,
			"method":  c.Sig.Method,
			"error":   err.Error(),
		})
		return err
	}

	d.metrics.RecordCall(1)

	enqueued := 0
	var cloneErr error
	d.reg.Each(func(obs any, q queue.Queue) bool {
		if !acceptsCall(obs, c) {
			return true
		}
		dup, err := c.Clone()
		if err != nil {
			// Deliveries already enqueued for earlier pairs stand.
			cloneErr = err
			return false
		}
		target := obs
		q.Submit(func() {
			d.deliver(target, dup)
		})
		enqueued++
		return true
	})

	if enqueued > 0 {
		d.metrics.RecordDeliveries(enqueued)
	}

	if cloneErr != nil {
		d.metrics.RecordArgumentFailure(1)
		d.emit(EventError, observability.LevelError, map[string]any{
			"call_id": c.ID,
			"method":  c.Sig.Method,
			"error":   cloneErr.Error(),
		})
		return cloneErr
	}

	if enqueued == 0 {
		d.metrics.RecordNoResponder(1)
		d.emit(EventNoResponder, observability.LevelVerbose, map[string]any{
			"call_id": c.ID,
			"method":  c.Sig.Method,
		})
		return nil
	}

	d.emit(EventFanout, observability.LevelVerbose, map[string]any{
		"call_id":    c.ID,
		"method":     c.Sig.Method,
		"deliveries": enqueued,
	})
	return nil
}

// Metrics returns a snapshot of the delegate's counters.
func (d *Delegate) Metrics() MetricsSnapshot {
	return d.metrics.Snapshot()
}

// Teardown clears every registration. Deliveries already submitted to
// their queues are unaffected and still run; their duplicated calls do
// not depend on the registry.
func (d *Delegate) Teardown() {
	d.reg.RemoveAll()
	d.emit(EventTeardown, observability.LevelVerbose, nil)
}

// deliver runs one duplicated call against one observer, on that
// observer's queue. An observer that expired after the delivery was
// enqueued is skipped. A panicking observer is contained so it cannot
// take down its queue.
func (d *Delegate) deliver(obs any, c *call.Call) {
	if e, ok := obs.(registry.Expirable); ok && e.Expired() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			d.metrics.RecordDeliveryPanic(1)
			d.emit(EventError, observability.LevelError, map[string]any{
				"call_id":  c.ID,
				"method":   c.Sig.Method,
				"observer": fmt.Sprintf("%T", obs),
				"panic":    fmt.Sprint(r),
			})
		}
	}()

	if h, ok := obs.(Handler); ok {
		h.HandleCall(d.ctx, c)
		return
	}
	invoke(obs, c)
}

func (d *Delegate) emit(t observability.EventType, level observability.Level, data map[string]any) {
	d.events.OnEvent(d.ctx, observability.Event{
		Type:      t,
		Level:     level,
		Timestamp: time.Now(),
		Source:    d.name,
		Data:      data,
	})
}
