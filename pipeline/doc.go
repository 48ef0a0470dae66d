// Package pipeline provides composable, pull-based data pipeline operators.
//
// Pipelines are lazy — no work happens until values are pulled via Collect,
// Drain, or ForEach. Each stage pulls from the previous stage on demand,
// providing natural backpressure without explicit flow control.
//
// The Iterator interface is structurally compatible with provider.Iterator[T],
// so provider streams plug directly into pipelines.
//
// # Operators
//
// Synchronous (each value is pulled on the caller's goroutine):
//
//   - Map: transform each value
//   - FlatMap: transform each value into multiple values
//   - Filter: keep values matching a predicate
//   - Take: pass through a bounded prefix, then stop the source
//   - Tap: side-effect without altering the value (logging, metrics, mid-pipeline publish)
//   - TapEach: per-element side-effect on []T (e.g., after FanOut)
//   - FanOut: apply multiple functions in parallel, collect results as []O
//   - Reduce: accumulate all values into one result
//   - Concat: join pipelines sequentially
//
// Concurrent (multi-goroutine):
//
//   - Buffer: decouple producer/consumer with a buffered channel
//   - Parallel: concurrent Map with a worker pool (order NOT preserved)
//   - Merge: combine multiple pipelines concurrently (order NOT preserved)
//
// # Usage
//
//	src := pipeline.FromSlice([]int{1, 2, 3, 4, 5})
//	doubled := pipeline.Map(src, func(_ context.Context, n int) (int, error) {
//	    return n * 2, nil
//	})
//	evens := pipeline.Filter(doubled, func(n int) bool { return n%2 == 0 })
//	results, _ := pipeline.Collect(ctx, evens)
//
// With a bridge:
//
//	source, events := pipeline.NewBridge[Event](strategy, delegate)
//	framed := pipeline.Map(events, encodeEvent)
//	pipeline.Drain(framed, publish).Run(ctx)
//
// The producer yields into source from any goroutine while the pipeline
// drains the bridge's single iterator.
package pipeline
