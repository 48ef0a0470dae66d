package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kbukum/bridgekit/logger"
)

// ConnectedEvent is sent when a client successfully connects.
type ConnectedEvent struct {
	ClientID  string            `json:"client_id"`
	UserID    string            `json:"user_id,omitempty"`
	SessionID string            `json:"session_id,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// ServeSSE handles an SSE connection for a specific client.
// This is the main entry point called from HTTP handlers.
func ServeSSE(hub *Hub, w http.ResponseWriter, r *http.Request, clientID string, opts ...ClientOption) {
	// Check SSE support (requires http.Flusher interface)
	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.Error("[SSE] Streaming not supported", map[string]interface{}{
			"client_id": clientID,
		})
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// Disable write deadline for SSE connections using ResponseController.
	// This is essential because SSE connections are long-lived and shouldn't be
	// terminated by the server's WriteTimeout setting.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		logger.Warn("[SSE] Could not disable write deadline", map[string]interface{}{
			"client_id": clientID,
			"error":     err.Error(),
		})
		// Continue anyway - the connection might still work with keep-alives
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// Create and register the client. Its stream bridge is the only
	// conduit between the hub's broadcast goroutine and this handler.
	client := hub.NewClient(clientID, opts...)
	hub.Register(client)
	defer func() {
		hub.Unregister(client)
	}()

	// Send initial connection event
	connectedEvent := ConnectedEvent{
		ClientID:  clientID,
		UserID:    client.UserID(),
		SessionID: client.SessionID(),
		Metadata:  client.Metadata(),
	}
	connectedData, _ := json.Marshal(connectedEvent)
	_, _ = w.Write(FormatEvent(EventTypeConnected, connectedData))
	flusher.Flush()

	logger.Debug("[SSE] Client connected", map[string]interface{}{
		"client_id":   clientID,
		"user_id":     client.UserID(),
		"session_id":  client.SessionID(),
		"remote_addr": r.RemoteAddr,
	})

	// Drain the client's iterator on a relay goroutine. The writer loop
	// below multiplexes the relayed events with keep-alive ticks; the
	// iterator itself stays on one goroutine for its whole life.
	ctx := r.Context()
	events := make(chan []byte)
	drained := make(chan error, 1)
	go func() {
		it := client.Events()
		defer it.Close()
		for {
			event, ok, err := it.Next(ctx)
			if err != nil || !ok {
				drained <- err
				close(events)
				return
			}
			select {
			case events <- event:
			case <-ctx.Done():
				drained <- nil
				close(events)
				return
			}
		}
	}()

	// Keep-alive interval should be less than proxy timeouts (typically 60s).
	keepAlive := time.NewTicker(30 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case event, open := <-events:
			if !open {
				err := <-drained
				if err != nil {
					// Producer-side failure: surface it as a final SSE
					// error event before closing.
					_, _ = w.Write(FormatEvent(EventTypeError, []byte(err.Error())))
					flusher.Flush()
				}
				logger.Debug("[SSE] Client stream drained", map[string]interface{}{
					"client_id": clientID,
				})
				return
			}
			_, _ = w.Write(FormatEvent("", event))
			flusher.Flush()
			logger.Debug("[SSE] Event sent", map[string]interface{}{
				"client_id": clientID,
				"data_size": len(event),
			})

		case <-keepAlive.C:
			// Comment frames keep the connection alive through proxies
			// and load balancers.
			_, _ = w.Write(FormatComment(fmt.Sprintf("keepalive %d", time.Now().Unix())))
			flusher.Flush()
			logger.Debug("[SSE] Keep-alive sent", map[string]interface{}{
				"client_id": clientID,
			})
		}
	}
}
