// Package provider implements a generic provider framework using Go
// generics for swappable streaming backends.
//
// The package defines two interaction patterns:
//   - RequestResponse[I, O]: one input → one output (HTTP, gRPC unary)
//   - Stream[I, O]: one input → many outputs (SSE, chunked HTTP, and
//     bridge-backed producers via NewBridgeStream)
//
// Opt-in lifecycle:
//   - Initializable: providers that need setup (dial, validate, warm)
//   - Closeable: providers that hold resources requiring cleanup
//
// # Middleware
//
// Middleware[I, O] is a function that wraps a RequestResponse provider.
// Use Chain to compose multiple middlewares:
//
//	wrapped := provider.Chain(
//	    provider.WithLogging[In, Out](log),
//	    provider.WithMetrics[In, Out](metrics),
//	    provider.WithTracing[In, Out]("my-service"),
//	)(rawProvider)
//
// Stream providers get resilience at the point the stream is opened via
// WithStreamResilience; the elements themselves flow untouched.
package provider
