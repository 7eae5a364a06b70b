// Package multicast provides a dispatch proxy that stands in for a
// single delegate but fans every call out to zero or more registered
// observers, each on the queue it asked to be called on.
//
// # Registration
//
// Observers register with a queue; omitting the queue registers the
// process-wide default queue:
//
//	d := multicast.New(ctx)
//	d.AddObserver(listener)                      // queue.Main()
//	d.AddObserverOn(listener, queue.NewSerial()) // dedicated queue
//
// One observer may register several queues and then receives each call
// once per queue. Registering the same (observer, queue) pair twice is
// a no-op. The proxy holds observers by identity only; an observer
// implementing registry.Expirable stops receiving calls the moment it
// reports expired.
//
// # Dispatch
//
// A call is intercepted, duplicated per recipient, and delivered
// asynchronously:
//
//	err := d.Call("DidReceiveFrame", call.Object(conn), call.Int32(seq))
//
// Every matching (observer, queue) pair gets its own duplicate of the
// call, submitted to that pair's queue. Deliveries are never
// synchronous with the caller. For a fixed pair, deliveries arrive in
// dispatch order; no ordering holds across pairs. A call no observer
// responds to is a silent no-op, not an error. The only synchronous
// failure is call.UnsupportedArgError, raised before anything is
// submitted.
//
// # Receiving calls
//
// An observer receives a call either through its method set — a void
// exported method whose name and parameters match the call — or, by
// implementing Handler, as a typed *call.Call value. A Handler that
// also implements Responder narrows which selectors it receives.
//
// # Concurrency
//
// All operations are safe for concurrent use. Registration state is
// guarded by one lock scoped strictly to registry access; traversal
// and delivery run on snapshots outside it, so an observer may remove
// itself from inside its own callback.
package multicast
