package multicast

import "github.com/tailored-agentic-units/multicast/observability"

// Event types emitted by a Delegate.
const (
	EventObserverAdded   observability.EventType = "delegate.observer.added"
	EventObserverRemoved observability.EventType = "delegate.observer.removed"
	EventTeardown        observability.EventType = "delegate.teardown"
	EventFanout          observability.EventType = "dispatch.fanout"
	EventNoResponder     observability.EventType = "dispatch.no_responder"
	EventError           observability.EventType = "dispatch.error"
)
