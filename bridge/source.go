package bridge

// Source is the producer-side handle returned by New. The producer calls
// Yield/YieldAll and Finish/FinishWithError from synchronous code — there
// is no async API on this side of the bridge. Source is safe to call from
// any goroutine; the bridge itself provides the only synchronization it
// needs.
type Source[T any, F error] struct {
	storage *storage[T, F]
}

// Yield deposits a single element into the stream. Non-blocking.
func (s *Source[T, F]) Yield(element T) YieldResult {
	return s.YieldAll([]T{element})
}

// YieldAll deposits elements into the stream in order, preserving their
// relative order against every other yield. Non-blocking; never allocates
// beyond appending to the internal buffer. Once the stream has finished or
// terminated, every call returns Dropped and the elements are discarded.
func (s *Source[T, F]) YieldAll(elements []T) YieldResult {
	return s.storage.yield(elements)
}

// Finish signals normal end-of-stream. Idempotent: calls after the first
// Finish or FinishWithError are ignored.
func (s *Source[T, F]) Finish() {
	var zero F
	s.storage.finish(zero, false)
}

// FinishWithError signals end-of-stream with a failure to be delivered
// after every buffered element has drained. Idempotent like Finish.
func (s *Source[T, F]) FinishWithError(failure F) {
	s.storage.finish(failure, true)
}
