package bridge

// stateKind identifies which arm of the tagged-union state is active.
type stateKind int

const (
	stateInitial stateKind = iota
	stateStreaming
	stateSourceFinished
	stateFinished
)

// String returns the state name.
func (k stateKind) String() string {
	switch k {
	case stateInitial:
		return "initial"
	case stateStreaming:
		return "streaming"
	case stateSourceFinished:
		return "source_finished"
	case stateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// waiter is the one-shot continuation a parked consumer is resumed
// through: a channel of capacity one, exactly as the design notes
// suggest. Resumption is always a single buffered send, so the resuming
// goroutine never blocks even if the consumer has not yet reached its
// receive.
type waiter[T any, F error] chan result[T, F]

// result is what a waiter is resumed with, or what Next resolves directly
// when no suspension was necessary: an element, end-of-stream, or a
// terminal failure.
type result[T any, F error] struct {
	value      T
	hasValue   bool
	failure    F
	hasFailure bool
}

func elementResult[T any, F error](v T) result[T, F] {
	return result[T, F]{value: v, hasValue: true}
}

func endResult[T any, F error]() result[T, F] {
	return result[T, F]{}
}

func failureResult[T any, F error](f F) result[T, F] {
	return result[T, F]{failure: f, hasFailure: true}
}

// state is a tagged union: Initial, Streaming, SourceFinished, or
// Finished, with the payload fields relevant to each kind. There is no
// separate transient "modifying" arm — the single mutex in storage already
// guarantees a transition is either fully applied or hasn't started, so no
// caller can ever observe a half-mutated value.
type state[T any, F error] struct {
	kind stateKind

	// Streaming, SourceFinished.
	buffer []T

	// Streaming only. A non-nil waiter implies an empty buffer;
	// otherwise the waiter would already have been resumed.
	waiter waiter[T, F]

	// Streaming only. Mirrors the last produce-more/stop-producing
	// value communicated to the producer.
	outstandingDemand bool

	// Initial, Streaming, SourceFinished.
	iteratorCreated bool

	// SourceFinished only.
	failure    F
	hasFailure bool

	// Cleared the moment a transition commits to Finished, so nothing
	// downstream can call a strategy method post-termination.
	strategy BackPressureStrategy
}
