package bridge

import "context"

// New constructs a bridge and returns the Source and Stream that share it.
// The caller must retain the Source and must transfer the Stream to the
// consumer. Dropping the Stream without ever creating an Iterator is a
// valid termination trigger (call Stream.Close to signal it).
func New[T any, F error](strategy BackPressureStrategy, delegate Delegate) (*Source[T, F], *Stream[T, F]) {
	st := newStorage[T, F](strategy, delegate)
	return &Source[T, F]{storage: st}, &Stream[T, F]{storage: st}
}

// NewNoFailure constructs a bridge whose Failure arm is uninhabited: the
// producer's FinishWithError takes a NoFailure, which the package never
// constructs, so the resulting iterator's Next never observes a failure. The non-throwing variant is a thin
// wrapper around the same state machine, not a separate one.
func NewNoFailure[T any](strategy BackPressureStrategy, delegate Delegate) (*Source[T, NoFailure], *NonThrowingStream[T]) {
	source, stream := New[T, NoFailure](strategy, delegate)
	return source, &NonThrowingStream[T]{stream: stream}
}

// NonThrowingStream adapts a Stream[T, NoFailure] so callers never see an
// error value that, by construction, can never be non-nil.
type NonThrowingStream[T any] struct {
	stream *Stream[T, NoFailure]
}

// Iterator returns the stream's single non-throwing iterator.
func (n *NonThrowingStream[T]) Iterator() *NonThrowingIterator[T] {
	return &NonThrowingIterator[T]{it: n.stream.Iterator()}
}

// Close releases the stream handle; see Stream.Close.
func (n *NonThrowingStream[T]) Close() error { return n.stream.Close() }

// NonThrowingIterator is the non-throwing variant's async handle: Next
// drops the error arm entirely instead of always returning nil for it.
type NonThrowingIterator[T any] struct {
	it *Iterator[T, NoFailure]
}

// Next returns the next element, or ok=false at end-of-stream. It panics
// if the underlying bridge somehow produced a failure, which should be
// impossible since NoFailure can never be constructed.
func (it *NonThrowingIterator[T]) Next(ctx context.Context) (T, bool) {
	v, ok, err := it.it.Next(ctx)
	if err != nil {
		panic("bridge: NoFailure iterator observed a non-nil failure")
	}
	return v, ok
}

// Close releases the iterator; see Iterator.Close.
func (it *NonThrowingIterator[T]) Close() error { return it.it.Close() }
