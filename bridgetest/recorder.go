package bridgetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/bridgekit/bridge"
	"github.com/kbukum/bridgekit/component"
)

// StreamRecorder is a TestComponent that drains one bridge stream and
// records every element it sees. Tests hand it the consumer half of a
// bridge, start it (directly or through a Manager), poke the producer,
// and assert on Recorded. Reset clears the recording; Snapshot/Restore
// capture and reinstate it, so one recorder can serve several test cases
// against a long-lived stream.
type StreamRecorder[T any] struct {
	name   string
	stream *bridge.Stream[T, error]

	mu       sync.Mutex
	recorded []T
	err      error
	running  bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewStreamRecorder creates a recorder draining stream.
func NewStreamRecorder[T any](name string, stream *bridge.Stream[T, error]) *StreamRecorder[T] {
	return &StreamRecorder[T]{name: name, stream: stream}
}

// Name returns the recorder's component name.
func (r *StreamRecorder[T]) Name() string { return r.name }

// Start claims the stream's iterator and begins recording on a background
// goroutine. Starting twice is an error, matching the stream's own
// single-iterator contract.
func (r *StreamRecorder[T]) Start(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("stream recorder %q already started", r.name)
	}
	r.running = true

	drainCtx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})

	it := r.stream.Iterator()
	go func() {
		defer close(r.done)
		defer it.Close()
		for {
			v, ok, err := it.Next(drainCtx)
			if err != nil {
				r.mu.Lock()
				r.err = err
				r.mu.Unlock()
				return
			}
			if !ok {
				return
			}
			r.mu.Lock()
			r.recorded = append(r.recorded, v)
			r.mu.Unlock()
		}
	}()

	return nil
}

// Stop cancels the drain goroutine and waits for it to exit.
func (r *StreamRecorder[T]) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stream recorder %q did not stop: %w", r.name, ctx.Err())
	}
}

// Health reports healthy while the recorder is draining.
func (r *StreamRecorder[T]) Health(context.Context) component.Health {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return component.Health{Name: r.name, Status: component.StatusUnhealthy, Message: "not started"}
	}
	if r.err != nil {
		return component.Health{Name: r.name, Status: component.StatusDegraded, Message: r.err.Error()}
	}
	return component.Health{Name: r.name, Status: component.StatusHealthy}
}

// Reset clears everything recorded so far.
func (r *StreamRecorder[T]) Reset(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recorded = nil
	r.err = nil
	return nil
}

// Snapshot returns a copy of the recording.
func (r *StreamRecorder[T]) Snapshot(context.Context) (interface{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.recorded...), nil
}

// Restore reinstates a recording captured by Snapshot.
func (r *StreamRecorder[T]) Restore(_ context.Context, snapshot interface{}) error {
	recorded, ok := snapshot.([]T)
	if !ok {
		return fmt.Errorf("stream recorder %q: snapshot has type %T", r.name, snapshot)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recorded = append([]T(nil), recorded...)
	return nil
}

// Recorded returns a copy of everything recorded so far.
func (r *StreamRecorder[T]) Recorded() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.recorded...)
}

// Err returns the stream failure observed by the drain loop, if any.
func (r *StreamRecorder[T]) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

var _ TestComponent = (*StreamRecorder[int])(nil)
