package pipeline

import (
	"context"

	"github.com/kbukum/bridgekit/bridge"
)

// FromBridge creates a pipeline that drains a bridge stream. The
// stream's single iterator is claimed when the pipeline first runs, so a
// bridge-backed pipeline is one-shot: running it again while the first
// run's iterator is live panics, and running it after that iterator was
// closed yields nothing, because the stream has terminated.
func FromBridge[T any](stream *bridge.Stream[T, error]) *Pipeline[T] {
	return FromFunc(func(_ context.Context) Iterator[T] {
		return stream.Iterator()
	})
}

// NewBridge opens a fresh bridge and returns its producer handle together
// with a pipeline over the consumer side. The producer yields from any
// goroutine, honoring the strategy's demand signal; the pipeline pulls
// elements through whatever operators are stacked on top.
func NewBridge[T any](strategy bridge.BackPressureStrategy, delegate bridge.Delegate) (*bridge.Source[T, error], *Pipeline[T]) {
	source, stream := bridge.New[T, error](strategy, delegate)
	return source, FromBridge(stream)
}
