package bridge

import (
	"context"
	"sync/atomic"
)

// Stream is the consumer-side handle returned by New. It produces exactly
// one live Iterator over its lifetime; a second call panics unless the
// stream has already terminated. Close must be
// called — typically via defer — if the consumer drops the stream without
// ever creating an iterator, since Go has no destructors to trigger the
// sequence_deinitialized signal on its own.
type Stream[T any, F error] struct {
	storage *storage[T, F]
	closed  atomic.Bool
}

// Iterator returns the stream's single Iterator. Calling it again once an
// iterator is already live is a programmer error and panics. Calling
// it after the stream has already reached its terminal state is
// tolerated: the returned iterator's Next immediately reports
// end-of-stream.
func (st *Stream[T, F]) Iterator() *Iterator[T, F] {
	st.storage.iteratorInitialized()
	return &Iterator[T, F]{storage: st.storage}
}

// Close releases the stream handle. If no iterator was ever created, this
// is the sequence_deinitialized signal and terminates the stream
// immediately. If an iterator was created, the consumer already owns
// termination and this is a no-op. Safe to call more than once.
func (st *Stream[T, F]) Close() error {
	if st.closed.CompareAndSwap(false, true) {
		st.storage.sequenceDeinitialized()
	}
	return nil
}

// Iterator is the async handle the consumer awaits. It is not meant to be
// shared across goroutines: at most one Next call may be outstanding at a
// time, and the bridge panics if it observes otherwise.
type Iterator[T any, F error] struct {
	storage *storage[T, F]
	closed  atomic.Bool
}

// Next returns the next element (ok=true), end-of-stream (ok=false,
// err=nil), or the terminal failure (err non-nil). It suspends the caller
// until the producer yields, finishes, or ctx is cancelled.
func (it *Iterator[T, F]) Next(ctx context.Context) (T, bool, error) {
	w := make(waiter[T, F], 1)
	outcome := it.storage.next(w)
	if !outcome.suspend {
		return resolveResult(outcome.result)
	}

	select {
	case res := <-w:
		return resolveResult(res)
	case <-ctx.Done():
		it.storage.cancel()
		// Exactly one of {cancel's own resume, a yield/finish that won
		// the race before cancel's lock acquisition} ever sends to w,
		// so this receive cannot block forever.
		return resolveResult(<-w)
	}
}

// Close releases the iterator. This is the iterator_deinitialized signal
// and, unless the stream already terminated, ends it. Safe to call more
// than once; must be called (typically via defer) once the consumer is
// done, since Go has no destructors.
func (it *Iterator[T, F]) Close() error {
	if it.closed.CompareAndSwap(false, true) {
		it.storage.iteratorDeinitialized()
	}
	return nil
}

func resolveResult[T any, F error](res result[T, F]) (T, bool, error) {
	var zero T
	if res.hasFailure {
		return zero, false, res.failure
	}
	if res.hasValue {
		return res.value, true, nil
	}
	return zero, false, nil
}
