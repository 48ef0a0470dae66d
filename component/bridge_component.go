package component

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/bridgekit/bridge"
)

// ProducerFunc feeds a bridge source until the context is cancelled or
// the producer decides to finish. It runs on its own goroutine; Stop
// cancels the context and waits for it to return.
type ProducerFunc[T any] func(ctx context.Context, source *bridge.Source[T, error])

// SourceComponent adapts one bridge producer into a lifecycle-managed
// Component: Start launches the producer goroutine, Stop cancels it and
// finishes the source so the consumer drains deterministically. Go has
// no destructor to finish an abandoned source on scope exit, so tying
// the source to a component's Stop is how a service gets that guarantee.
type SourceComponent[T any] struct {
	name     string
	source   *bridge.Source[T, error]
	producer ProducerFunc[T]

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewSourceComponent creates a component that owns source and drives it
// with producer for as long as the component is running.
func NewSourceComponent[T any](name string, source *bridge.Source[T, error], producer ProducerFunc[T]) *SourceComponent[T] {
	return &SourceComponent[T]{
		name:     name,
		source:   source,
		producer: producer,
	}
}

// Name returns the component's registration name.
func (c *SourceComponent[T]) Name() string { return c.name }

// Start launches the producer goroutine.
func (c *SourceComponent[T]) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return fmt.Errorf("source component %q already started", c.name)
	}

	prodCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	c.started = true

	go func() {
		defer close(c.done)
		c.producer(prodCtx, c.source)
	}()

	return nil
}

// Stop cancels the producer, waits for it to return, then finishes the
// source. Finish is idempotent, so a producer that already finished on
// its own is fine.
func (c *SourceComponent[T]) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return nil
	}
	c.started = false
	c.cancel()

	select {
	case <-c.done:
	case <-ctx.Done():
		return fmt.Errorf("source component %q: producer did not stop: %w", c.name, ctx.Err())
	}

	c.source.Finish()
	return nil
}

// Health reports healthy while the producer goroutine is running.
func (c *SourceComponent[T]) Health(ctx context.Context) Health {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return Health{Name: c.name, Status: StatusUnhealthy, Message: "not started"}
	}
	select {
	case <-c.done:
		return Health{Name: c.name, Status: StatusDegraded, Message: "producer exited"}
	default:
		return Health{Name: c.name, Status: StatusHealthy}
	}
}

// Describe reports the component for the startup summary.
func (c *SourceComponent[T]) Describe() Description {
	return Description{
		Name:    c.name,
		Type:    "stream-source",
		Details: "bridge-backed producer",
	}
}
