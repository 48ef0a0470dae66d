// Package dag provides a DAG (Directed Acyclic Graph) execution engine
// for orchestrating provider-backed stages in dependency order.
//
// It composes with the provider package — a node wraps a
// RequestResponse[I,O] (FromProvider) or drains a Stream[I,O]
// (FromStream), so bridge-backed producers slot in as graph stages and
// all provider middleware (resilience, logging, tracing) applies
// per-node without changes.
//
// Two execution modes share the same graph:
//   - ExecuteBatch: runs ALL nodes in dependency order (one-shot)
//   - ExecuteStreaming: runs only nodes whose schedule/condition is met
package dag
