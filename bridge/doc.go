// Package bridge implements a unicast, back-pressured, asynchronous
// stream bridge: a state machine that couples a synchronous producer
// (Source.Yield / Source.Finish) to a single asynchronous consumer
// (Iterator.Next) across a shared buffer governed by a pluggable
// BackPressureStrategy.
//
// The bridge guarantees non-blocking hand-off from producer to consumer,
// at-most-one in-flight Next call, and deterministic termination with
// exactly one DidTerminate notification. Every public operation funnels
// through a single mutex; the transition functions in machine.go never
// lock, allocate beyond the buffer append path, or call out — they return
// an action describing what Storage must do once the lock is released.
//
// This package does not wire into any I/O event loop, HTTP/WebSocket
// transport, or concrete back-pressure policy; those live one layer up
// (see the resilience, sse, and httpapi packages) and consume the bridge
// only through Source, Stream, Iterator, BackPressureStrategy, and
// Delegate.
package bridge
