package multicast

import "sync/atomic"

// MetricsSnapshot is a point-in-time view of a delegate's counters.
type MetricsSnapshot struct {
	CallsDispatched    int64
	DeliveriesEnqueued int64
	NoResponderCalls   int64
	ArgumentFailures   int64
	DeliveryPanics     int64
}

// Metrics tracks dispatch activity with atomic counters.
type Metrics struct {
	callsDispatched    atomic.Int64
	deliveriesEnqueued atomic.Int64
	noResponderCalls   atomic.Int64
	argumentFailures   atomic.Int64
	deliveryPanics     atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) RecordCall(delta int) {
	m.callsDispatched.Add(int64(delta))
}

func (m *Metrics) RecordDeliveries(delta int) {
	m.deliveriesEnqueued.Add(int64(delta))
}

func (m *Metrics) RecordNoResponder(delta int) {
	m.noResponderCalls.Add(int64(delta))
}

func (m *Metrics) RecordArgumentFailure(delta int) {
	m.argumentFailures.Add(int64(delta))
}

func (m *Metrics) RecordDeliveryPanic(delta int) {
	m.deliveryPanics.Add(int64(delta))
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		CallsDispatched:    m.callsDispatched.Load(),
		DeliveriesEnqueued: m.deliveriesEnqueued.Load(),
		NoResponderCalls:   m.noResponderCalls.Load(),
		ArgumentFailures:   m.argumentFailures.Load(),
		DeliveryPanics:     m.deliveryPanics.Load(),
	}
}
