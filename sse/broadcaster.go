package sse

// Broadcaster is an interface for broadcasting events to clients.
// Producers (httpapi handlers, pipeline sinks) depend on this
// abstraction rather than on a concrete Hub.
type Broadcaster interface {
	// BroadcastToPattern sends data to all clients matching the given pattern.
	// Pattern uses glob-style matching (e.g., "stream:*" or "stream:abc123").
	BroadcastToPattern(pattern string, data []byte)
}
