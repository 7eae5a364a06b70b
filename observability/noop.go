package observability

import "context"

// NoOpObserver discards all events. It is the default sink for a
// delegate constructed without configuration.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(ctx context.Context, event Event) {}
