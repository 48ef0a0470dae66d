package httpapi

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/bridgekit/logger"
	"github.com/kbukum/bridgekit/sse"
)

func newTestHandler(t *testing.T) (*Handler, *httptest.Server, *sse.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := sse.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	h := NewHandler(hub, logger.NewDefault("httpapi-test"))
	t.Cleanup(h.Shutdown)

	router := gin.New()
	h.RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return h, server, hub
}

func createStream(t *testing.T, server *httptest.Server, body string) CreateStreamResponse {
	t.Helper()
	resp, err := http.Post(server.URL+"/streams", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created CreateStreamResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	return created
}

func TestCreateStream_ReturnsEventsURL(t *testing.T) {
	_, server, _ := newTestHandler(t)

	created := createStream(t, server, `{"count": 3}`)
	if created.StreamID == "" {
		t.Error("expected a stream id")
	}
	if !strings.Contains(created.EventsURL, created.StreamID) {
		t.Errorf("events URL should reference the stream, got %q", created.EventsURL)
	}
}

func TestCreateStream_RejectsBadBody(t *testing.T) {
	_, server, _ := newTestHandler(t)

	resp, err := http.Post(server.URL+"/streams", "application/json", bytes.NewBufferString(`{"count": 0}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for zero count, got %d", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if _, ok := body["error"]; !ok {
		t.Error("expected structured error body")
	}
}

func TestStreamEvents_DeliversProducedEvents(t *testing.T) {
	_, server, _ := newTestHandler(t)

	created := createStream(t, server, `{"count": 1000, "interval_ms": 20}`)

	resp, err := http.Get(server.URL + created.EventsURL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected text/event-stream, got %q", ct)
	}

	// The producer keeps emitting while we are connected; expect at least
	// one data frame carrying our stream id.
	deadline := time.After(3 * time.Second)
	found := make(chan bool, 1)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.HasPrefix(line, "data:") && strings.Contains(line, created.StreamID) {
				found <- true
				return
			}
		}
		found <- false
	}()

	select {
	case ok := <-found:
		if !ok {
			t.Error("stream closed without delivering an event")
		}
	case <-deadline:
		t.Error("timed out waiting for an event")
	}
}

func TestStopStream_CancelsProducer(t *testing.T) {
	h, server, _ := newTestHandler(t)

	created := createStream(t, server, `{"count": 100000, "interval_ms": 50}`)

	req, _ := http.NewRequest(http.MethodDelete, server.URL+"/streams/"+created.StreamID, http.NoBody)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	// The producer deregisters itself once cancelled.
	deadline := time.Now().Add(time.Second)
	for {
		h.mu.Lock()
		_, alive := h.cancels[created.StreamID]
		h.mu.Unlock()
		if !alive {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("producer did not stop")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Stopping again reports not found.
	req, _ = http.NewRequest(http.MethodDelete, server.URL+"/streams/"+created.StreamID, http.NoBody)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after stop, got %d", resp.StatusCode)
	}
}

func TestStreamEvents_RejectsBadID(t *testing.T) {
	_, server, _ := newTestHandler(t)

	resp, err := http.Get(server.URL + "/streams/not-a-uuid/events")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed id, got %d", resp.StatusCode)
	}
}
