// Package sse provides Server-Sent Events (SSE) infrastructure for
// real-time event delivery in bridgekit applications.
//
// Every connected client owns a private stream bridge: the hub's
// broadcast goroutine is the synchronous producer yielding into it, and
// the client's HTTP handler is the single asynchronous consumer draining
// its iterator. Slow clients are absorbed by the bridge's buffer and
// surfaced through its back-pressure signal instead of being silently
// dropped by a full channel.
//
// # Architecture
//
//   - Hub: Central event router managing client subscriptions
//   - Client: One connection; wraps the producer side of its bridge
//   - Broadcaster: Sends events to all matching clients
//   - ServeSSE: HTTP handler draining one client's iterator
//
// # Usage
//
//	hub := sse.NewHub()
//	go hub.Run()
//	router.GET("/events", func(c *gin.Context) {
//	    sse.ServeSSE(hub, c.Writer, c.Request, clientID)
//	})
package sse
