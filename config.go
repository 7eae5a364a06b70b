package multicast

import (
	"github.com/tailored-agentic-units/multicast/observability"
	"github.com/tailored-agentic-units/multicast/queue"
)

const defaultName = "multicast.delegate"

// Config holds construction parameters for a Delegate. Every field is
// optional; the zero value behaves like DefaultConfig once merged.
type Config struct {
	// Name is the event source attached to emitted events.
	Name string
	// DefaultQueue is the queue AddObserver registers. Defaults to
	// queue.Main().
	DefaultQueue queue.Queue
	// Events receives the delegate's instrumentation events. Defaults
	// to observability.NoOpObserver.
	Events observability.Observer
}

// DefaultConfig returns a Config with the package defaults.
func DefaultConfig() Config {
	return Config{
		Name:         defaultName,
		DefaultQueue: queue.Main(),
		Events:       observability.NoOpObserver{},
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Name != "" {
		c.Name = source.Name
	}
	if source.DefaultQueue != nil {
		c.DefaultQueue = source.DefaultQueue
	}
	if source.Events != nil {
		c.Events = source.Events
	}
}
