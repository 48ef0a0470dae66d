package provider

import "context"

// RequestResponse represents a provider that takes one input and returns one output.
// This covers: HTTP calls, gRPC unary, SQL queries, one-shot commands.
type RequestResponse[I, O any] interface {
	Provider
	Execute(ctx context.Context, input I) (O, error)
}

// Stream represents a provider that takes one input and returns multiple outputs.
// This covers: SSE, chunked HTTP, and bridge-backed producers (see
// NewBridgeStream), where a synchronous source feeds the iterator the
// consumer drains.
type Stream[I, O any] interface {
	Provider
	Execute(ctx context.Context, input I) (Iterator[O], error)
}
