package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/bridgekit/bridge"
	"github.com/kbukum/bridgekit/resilience"
)

func testStrategy() bridge.BackPressureStrategy {
	return resilience.NewWatermark(resilience.WatermarkConfig{Name: "test", Low: 2, High: 4})
}

// nextEvent drains one event from a client iterator with a deadline.
func nextEvent(t *testing.T, it *bridge.Iterator[[]byte, error]) (string, bool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	data, ok, err := it.Next(ctx)
	if err != nil {
		t.Fatalf("unexpected iterator error: %v", err)
	}
	return string(data), ok
}

func TestClient_NewClient(t *testing.T) {
	client := NewClient("test:abc123", testStrategy())

	if client.ID() != "test:abc123" {
		t.Errorf("expected ID 'test:abc123', got '%s'", client.ID())
	}
	if client.Backlogged() {
		t.Error("a fresh client must not be backlogged")
	}
}

func TestClient_SendDeliversThroughIterator(t *testing.T) {
	client := NewClient("test:abc123", testStrategy())
	it := client.Events()
	defer it.Close()

	if !client.Send([]byte("test message")) {
		t.Error("expected send to succeed")
	}

	msg, ok := nextEvent(t, it)
	if !ok || msg != "test message" {
		t.Errorf("expected 'test message', got (%q, %t)", msg, ok)
	}
}

func TestClient_BackloggedWhenBufferGrows(t *testing.T) {
	client := NewClient("test:abc123", testStrategy())

	// High watermark is 4: the buffer absorbs every event, but once depth
	// reaches the mark the client is flagged as backlogged.
	for i := 0; i < 4; i++ {
		if !client.Send([]byte("msg")) {
			t.Fatal("buffered sends must still succeed")
		}
	}
	if !client.Backlogged() {
		t.Error("expected client to be backlogged at the high watermark")
	}

	// Draining below the low watermark clears the flag via the bridge's
	// demand edge.
	it := client.Events()
	defer it.Close()
	for i := 0; i < 3; i++ {
		if _, ok := nextEvent(t, it); !ok {
			t.Fatal("expected buffered event")
		}
	}
	if client.Backlogged() {
		t.Error("expected backlog flag to clear after draining")
	}
}

func TestClient_SendAfterCloseFails(t *testing.T) {
	client := NewClient("test:abc123", testStrategy())
	it := client.Events()
	defer it.Close()

	client.Close()
	if _, ok := nextEvent(t, it); ok {
		t.Error("expected end-of-stream after close")
	}
	if client.Send([]byte("late")) {
		t.Error("expected send to fail once the stream terminated")
	}
}

func TestClient_CloseDrainsBufferFirst(t *testing.T) {
	client := NewClient("test:abc123", testStrategy())

	client.Send([]byte("one"))
	client.Send([]byte("two"))
	client.Close()

	it := client.Events()
	defer it.Close()

	if msg, ok := nextEvent(t, it); !ok || msg != "one" {
		t.Errorf("expected buffered 'one', got (%q, %t)", msg, ok)
	}
	if msg, ok := nextEvent(t, it); !ok || msg != "two" {
		t.Errorf("expected buffered 'two', got (%q, %t)", msg, ok)
	}
	if _, ok := nextEvent(t, it); ok {
		t.Error("expected end-of-stream after the buffer drained")
	}
}

func TestHub_NewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("expected hub to be created")
	}

	if hub.GetClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.GetClientCount())
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := hub.NewClient("test:abc123")

	// Register client
	hub.Register(client)
	time.Sleep(10 * time.Millisecond) // Wait for registration

	if hub.GetClientCount() != 1 {
		t.Errorf("expected 1 client after register, got %d", hub.GetClientCount())
	}

	// Unregister client
	hub.Unregister(client)
	time.Sleep(10 * time.Millisecond) // Wait for unregistration

	if hub.GetClientCount() != 0 {
		t.Errorf("expected 0 clients after unregister, got %d", hub.GetClientCount())
	}
}

func TestHub_GetClientIDs(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	hub.Register(hub.NewClient("test:abc"))
	hub.Register(hub.NewClient("test:xyz"))
	time.Sleep(10 * time.Millisecond)

	ids := hub.GetClientIDs()
	if len(ids) != 2 {
		t.Errorf("expected 2 client IDs, got %d", len(ids))
	}

	idMap := make(map[string]bool)
	for _, id := range ids {
		idMap[id] = true
	}

	if !idMap["test:abc"] {
		t.Error("expected 'test:abc' in client IDs")
	}
	if !idMap["test:xyz"] {
		t.Error("expected 'test:xyz' in client IDs")
	}
}

func TestHub_BroadcastToPattern_ExactMatch(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client1 := hub.NewClient("test:abc123")
	client2 := hub.NewClient("test:xyz789")
	it1 := client1.Events()
	defer it1.Close()
	it2 := client2.Events()
	defer it2.Close()

	hub.Register(client1)
	hub.Register(client2)
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastToPattern("test:abc123", []byte("message for abc"))

	// client1 should receive
	if msg, ok := nextEvent(t, it1); !ok || msg != "message for abc" {
		t.Errorf("expected 'message for abc', got (%q, %t)", msg, ok)
	}

	// client2 should NOT receive: its stream stays empty until the hub
	// shuts it down.
	hub.Unregister(client2)
	if msg, ok := nextEvent(t, it2); ok {
		t.Errorf("client2 should NOT have received a message, got %q", msg)
	}
}

func TestHub_BroadcastToPattern_Wildcard(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client1 := hub.NewClient("test:abc")
	client2 := hub.NewClient("test:xyz")
	client3 := hub.NewClient("pipeline:abc")
	it1 := client1.Events()
	defer it1.Close()
	it2 := client2.Events()
	defer it2.Close()
	it3 := client3.Events()
	defer it3.Close()

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastToPattern("test:*", []byte("message for tests"))

	if msg, ok := nextEvent(t, it1); !ok || msg != "message for tests" {
		t.Errorf("client1: expected 'message for tests', got (%q, %t)", msg, ok)
	}
	if msg, ok := nextEvent(t, it2); !ok || msg != "message for tests" {
		t.Errorf("client2: expected 'message for tests', got (%q, %t)", msg, ok)
	}

	// client3 (pipeline) should NOT receive.
	hub.Unregister(client3)
	if msg, ok := nextEvent(t, it3); ok {
		t.Errorf("client3 should NOT have received a message, got %q", msg)
	}
}

func TestHub_ConcurrentOperations(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	var wg sync.WaitGroup
	clients := make([]*Client, 10)

	// Register clients concurrently
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			clients[idx] = hub.NewClient("test:client-" + string(rune('a'+idx)))
			hub.Register(clients[idx])
		}(i)
	}
	wg.Wait()
	time.Sleep(20 * time.Millisecond)

	if hub.GetClientCount() != 10 {
		t.Errorf("expected 10 clients, got %d", hub.GetClientCount())
	}

	// Broadcast concurrently
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.BroadcastToPattern("test:*", []byte("concurrent message"))
		}()
	}
	wg.Wait()

	// Unregister concurrently
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			hub.Unregister(clients[idx])
		}(i)
	}
	wg.Wait()
	time.Sleep(20 * time.Millisecond)

	if hub.GetClientCount() != 0 {
		t.Errorf("expected 0 clients after unregister, got %d", hub.GetClientCount())
	}
}

func TestMessage_Fields(t *testing.T) {
	msg := &Message{
		Pattern: "test:*",
		Data:    []byte("test data"),
	}

	if msg.Pattern != "test:*" {
		t.Errorf("expected pattern 'test:*', got '%s'", msg.Pattern)
	}

	if string(msg.Data) != "test data" {
		t.Errorf("expected data 'test data', got '%s'", string(msg.Data))
	}
}

func TestClient_WithMetadata(t *testing.T) {
	client := NewClient("test:abc", testStrategy(),
		WithMetadata("custom-key", "custom-value"),
	)

	if client.GetMetadata("custom-key") != "custom-value" {
		t.Errorf("expected metadata 'custom-value', got '%s'", client.GetMetadata("custom-key"))
	}
}

func TestClient_WithUserID(t *testing.T) {
	client := NewClient("test:abc", testStrategy(),
		WithUserID("user-123"),
	)

	if client.UserID() != "user-123" {
		t.Errorf("expected UserID 'user-123', got '%s'", client.UserID())
	}
	if client.GetMetadata("user_id") != "user-123" {
		t.Errorf("expected metadata user_id 'user-123', got '%s'", client.GetMetadata("user_id"))
	}
}

func TestClient_WithSessionID(t *testing.T) {
	client := NewClient("test:abc", testStrategy(),
		WithSessionID("session-456"),
	)

	if client.SessionID() != "session-456" {
		t.Errorf("expected SessionID 'session-456', got '%s'", client.SessionID())
	}
}

func TestClient_MultipleOptions(t *testing.T) {
	client := NewClient("test:abc", testStrategy(),
		WithUserID("user-1"),
		WithSessionID("sess-2"),
		WithMetadata("env", "prod"),
	)

	if client.UserID() != "user-1" {
		t.Errorf("expected UserID 'user-1', got '%s'", client.UserID())
	}
	if client.SessionID() != "sess-2" {
		t.Errorf("expected SessionID 'sess-2', got '%s'", client.SessionID())
	}
	if client.GetMetadata("env") != "prod" {
		t.Errorf("expected env 'prod', got '%s'", client.GetMetadata("env"))
	}
}

func TestHub_GetClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := hub.NewClient("test:abc123")
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	got := hub.GetClient("test:abc123")
	if got == nil {
		t.Error("expected to find registered client")
	}
	if got.ID() != "test:abc123" {
		t.Errorf("expected ID 'test:abc123', got '%s'", got.ID())
	}

	missing := hub.GetClient("nonexistent")
	if missing != nil {
		t.Error("expected nil for unregistered client")
	}
}

func TestHub_StopFinishesClientStreams(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := hub.NewClient("test:abc")
	it := client.Events()
	defer it.Close()
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	hub.Stop()
	time.Sleep(10 * time.Millisecond)

	// The client's consumer sees end-of-stream.
	if _, ok := nextEvent(t, it); ok {
		t.Error("expected end-of-stream after hub stop")
	}

	// Double stop should be safe
	hub.Stop()
}

func TestHub_WithStrategyFactory(t *testing.T) {
	hub := NewHub(WithStrategyFactory(func() bridge.BackPressureStrategy {
		return resilience.NewWatermark(resilience.WatermarkConfig{Name: "tight", Low: 1, High: 1})
	}))

	client := hub.NewClient("test:tight")
	client.Send([]byte("one"))
	if !client.Backlogged() {
		t.Error("expected a high watermark of 1 to flag the client immediately")
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	comp := NewComponent("/events")

	if comp.Name() != "sse" {
		t.Errorf("expected name 'sse', got %q", comp.Name())
	}

	// Start
	ctx := context.Background()
	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Health
	health := comp.Health(ctx)
	if health.Name != "sse" {
		t.Errorf("expected health name 'sse', got %q", health.Name)
	}
	if health.Status != "healthy" {
		t.Errorf("expected status 'healthy', got %q", health.Status)
	}
	if !strings.Contains(health.Message, "0 clients") {
		t.Errorf("expected '0 clients' in message, got %q", health.Message)
	}

	// Hub should be accessible
	if comp.Hub() == nil {
		t.Error("expected non-nil Hub")
	}

	// Stop
	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestComponent_Describe(t *testing.T) {
	comp := NewComponent("/api/events")

	desc := comp.Describe()
	if desc.Name != "SSE Hub" {
		t.Errorf("expected name 'SSE Hub', got %q", desc.Name)
	}
	if desc.Type != "sse" {
		t.Errorf("expected type 'sse', got %q", desc.Type)
	}
	if !strings.Contains(desc.Details, "/api/events") {
		t.Errorf("expected path in details, got %q", desc.Details)
	}
}

func TestComponent_WithClients(t *testing.T) {
	comp := NewComponent("/events")
	ctx := context.Background()
	comp.Start(ctx)
	defer comp.Stop(ctx)

	// Register a client through the hub
	client := comp.Hub().NewClient("test:client-1")
	comp.Hub().Register(client)
	time.Sleep(10 * time.Millisecond)

	health := comp.Health(ctx)
	if !strings.Contains(health.Message, "1 clients") {
		t.Errorf("expected '1 clients' in message, got %q", health.Message)
	}
}

func TestServeSSE(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	// Create a test HTTP server
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeSSE(hub, w, r, "test:client-1", WithUserID("user-1"))
	})

	server := httptest.NewServer(handler)
	defer server.Close()

	// Connect as SSE client
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, "GET", server.URL, http.NoBody)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		// Context timeout is expected - we just want to verify the connection was established
		return
	}
	defer resp.Body.Close()

	if resp.Header.Get("Content-Type") != "text/event-stream" {
		t.Errorf("expected Content-Type 'text/event-stream', got %q", resp.Header.Get("Content-Type"))
	}
	if resp.Header.Get("Cache-Control") != "no-cache" {
		t.Errorf("expected Cache-Control 'no-cache', got %q", resp.Header.Get("Cache-Control"))
	}
}

func TestServeSSE_WithBroadcast(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeSSE(hub, w, r, "test:client-1")
	})

	server := httptest.NewServer(handler)
	defer server.Close()

	// Connect as SSE client in background
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, "GET", server.URL, http.NoBody)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return // timeout is ok for SSE
	}
	defer resp.Body.Close()

	// Read the connected event.
	buf := make([]byte, 4096)
	n, _ := resp.Body.Read(buf)
	data := string(buf[:n])
	if !strings.Contains(data, "connected") {
		t.Errorf("expected connected event, got %q", data)
	}

	// Wait for the handler's registration to land, then broadcast an
	// event through the hub and expect it over the wire.
	time.Sleep(50 * time.Millisecond)
	hub.BroadcastToPattern("test:*", []byte(`{"n":1}`))

	n, _ = resp.Body.Read(buf)
	data = string(buf[:n])
	if !strings.Contains(data, `{"n":1}`) {
		t.Errorf("expected broadcast payload, got %q", data)
	}
}

func TestEventTypeConstants(t *testing.T) {
	if EventTypeConnected != "connected" {
		t.Errorf("expected 'connected', got %q", EventTypeConnected)
	}
	if EventTypeKeepAlive != "keepalive" {
		t.Errorf("expected 'keepalive', got %q", EventTypeKeepAlive)
	}
	if EventTypeMessage != "message" {
		t.Errorf("expected 'message', got %q", EventTypeMessage)
	}
	if EventTypeError != "error" {
		t.Errorf("expected 'error', got %q", EventTypeError)
	}
}
