package provider

import (
	"context"

	"github.com/kbukum/bridgekit/bridge"
)

// ProduceFunc feeds one opened stream. It runs on its own goroutine and
// should stop when ctx is cancelled, when Yield reports
// bridge.Dropped, or when it has nothing left to produce — finishing the
// source either way. The consumer's iterator drains whatever was
// buffered before seeing end-of-stream.
type ProduceFunc[I, O any] func(ctx context.Context, input I, source *bridge.Source[O, error])

// BridgeStreamConfig configures a bridge-backed Stream provider.
type BridgeStreamConfig[O any] struct {
	// Name is the provider name reported to middleware and metrics.
	Name string
	// NewStrategy builds the back-pressure strategy for one opened
	// stream. Strategies are stateful, so a fresh one is required per
	// Execute call.
	NewStrategy func() bridge.BackPressureStrategy
	// NewDelegate optionally builds a delegate for one opened stream.
	NewDelegate func() bridge.Delegate
}

// NewBridgeStream returns a Stream provider that opens a fresh bridge per
// Execute call: the producer goroutine runs produce with the Source, and
// the caller receives the bridge's single Iterator. bridge.Iterator
// already satisfies the Iterator contract, so consumers and middleware
// see an ordinary stream provider while the producer gets the bridge's
// back-pressure signalling.
func NewBridgeStream[I, O any](config BridgeStreamConfig[O], produce ProduceFunc[I, O]) Stream[I, O] {
	return &bridgeStream[I, O]{config: config, produce: produce}
}

type bridgeStream[I, O any] struct {
	config  BridgeStreamConfig[O]
	produce ProduceFunc[I, O]
}

func (b *bridgeStream[I, O]) Name() string { return b.config.Name }

func (b *bridgeStream[I, O]) IsAvailable(context.Context) bool { return true }

func (b *bridgeStream[I, O]) Execute(ctx context.Context, input I) (Iterator[O], error) {
	var delegate bridge.Delegate
	if b.config.NewDelegate != nil {
		delegate = b.config.NewDelegate()
	}

	source, stream := bridge.New[O, error](b.config.NewStrategy(), delegate)
	it := stream.Iterator()

	go b.produce(ctx, input, source)

	return it, nil
}
