package sse

import (
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/kbukum/bridgekit/bridge"
	"github.com/kbukum/bridgekit/logger"
	"github.com/kbukum/bridgekit/resilience"
)

// Client represents a connected SSE client. Each client owns a private
// stream bridge: the hub's broadcast goroutine yields events into the
// producer side, and the client's HTTP handler drains the single
// iterator on the consumer side. Back-pressure from a slow client is
// surfaced to the hub through the bridge's demand signal instead of a
// fixed-size channel silently filling up.
type Client struct {
	id       string
	metadata map[string]string

	source *bridge.Source[[]byte, error]
	stream *bridge.Stream[[]byte, error]

	// backlogged mirrors the last demand signal observed for this
	// client: set when a yield reports stop_producing, cleared by the
	// bridge's produce_more edge.
	backlogged atomic.Bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithMetadata adds a metadata key-value pair to the client.
func WithMetadata(key, value string) ClientOption {
	return func(c *Client) {
		if c.metadata == nil {
			c.metadata = make(map[string]string)
		}
		c.metadata[key] = value
	}
}

// WithUserID sets the user ID metadata.
func WithUserID(userID string) ClientOption {
	return WithMetadata("user_id", userID)
}

// WithSessionID sets the session ID metadata.
func WithSessionID(sessionID string) ClientOption {
	return WithMetadata("session_id", sessionID)
}

// clientDelegate receives the bridge's producer-side callbacks for one
// client. Invoked outside the bridge's lock, so flipping the flag here
// cannot contend with a yield in progress.
type clientDelegate struct {
	client *Client
}

func (d clientDelegate) ProduceMore() {
	d.client.backlogged.Store(false)
}

func (d clientDelegate) DidTerminate() {
	logger.Debug("[SSE] Client stream terminated", map[string]interface{}{
		"client_id": d.client.id,
	})
}

// NewClient creates a new SSE client with its own stream bridge,
// back-pressured by strategy. Strategies are stateful and must not be
// shared between clients.
func NewClient(id string, strategy bridge.BackPressureStrategy, opts ...ClientOption) *Client {
	c := &Client{
		id:       id,
		metadata: make(map[string]string),
	}
	c.source, c.stream = bridge.New[[]byte, error](strategy, clientDelegate{client: c})
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the client's unique identifier.
func (c *Client) ID() string {
	return c.id
}

// Metadata returns all client metadata.
func (c *Client) Metadata() map[string]string {
	return c.metadata
}

// GetMetadata returns a specific metadata value.
func (c *Client) GetMetadata(key string) string {
	return c.metadata[key]
}

// UserID returns the client's user ID (convenience method).
func (c *Client) UserID() string {
	return c.metadata["user_id"]
}

// SessionID returns the client's session ID (convenience method).
func (c *Client) SessionID() string {
	return c.metadata["session_id"]
}

// Events claims the client's single event iterator. Only the HTTP
// handler serving this client may call it, exactly once.
func (c *Client) Events() *bridge.Iterator[[]byte, error] {
	return c.stream.Iterator()
}

// Backlogged reports whether the client's buffer was above its
// strategy's comfort level at the last send.
func (c *Client) Backlogged() bool {
	return c.backlogged.Load()
}

// Send yields data into the client's stream. Returns false if the
// client's stream has already terminated (disconnected consumer); the
// data is discarded in that case. A backlogged client still accepts the
// event — the buffer absorbs it — but is flagged so the hub can log it.
func (c *Client) Send(data []byte) bool {
	switch c.source.Yield(data) {
	case bridge.Dropped:
		return false
	case bridge.StopProducing:
		if !c.backlogged.Swap(true) {
			logger.Warn("[SSE] Client backlogged, buffering", map[string]interface{}{
				"client_id": c.id,
			})
		}
		return true
	default:
		return true
	}
}

// Close finishes the client's stream. The consumer drains anything
// still buffered, then sees end-of-stream.
func (c *Client) Close() {
	c.source.Finish()
}

// Hub manages SSE client connections and message broadcasting.
type Hub struct {
	clients     map[string]*Client // client ID -> Client
	register    chan *Client       // Channel for registering clients
	unregister  chan *Client       // Channel for unregistering clients
	broadcast   chan *Message      // Channel for broadcasting messages
	done        chan struct{}      // Signals the hub to stop
	stopped     bool               // Whether the hub has been stopped
	mu          sync.RWMutex       // Protects clients map for reads during matching
	newStrategy func() bridge.BackPressureStrategy
}

// Message represents a message to broadcast.
type Message struct {
	Pattern string // Glob pattern for matching clients
	Data    []byte // Event data to send
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithStrategyFactory sets the factory used to build each new client's
// back-pressure strategy.
func WithStrategyFactory(factory func() bridge.BackPressureStrategy) HubOption {
	return func(h *Hub) {
		h.newStrategy = factory
	}
}

// NewHub creates a new SSE hub. Without options, each client gets a
// default watermark strategy.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
		done:       make(chan struct{}),
		newStrategy: func() bridge.BackPressureStrategy {
			return resilience.NewWatermark(resilience.DefaultWatermarkConfig("sse"))
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewClient creates a client wired with this hub's strategy factory.
// The client still needs to be registered before broadcasts reach it.
func (h *Hub) NewClient(id string, opts ...ClientOption) *Client {
	return NewClient(id, h.newStrategy(), opts...)
}

// Run starts the hub's main event loop.
// It blocks until Stop is called.
// This should be run in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAllClients()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			logger.Debug("[SSE_HUB] Client registered", map[string]interface{}{
				"client_id":     client.id,
				"total_clients": len(h.clients),
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				client.Close()
			}
			h.mu.Unlock()
			logger.Debug("[SSE_HUB] Client unregistered", map[string]interface{}{
				"client_id":     client.id,
				"total_clients": len(h.clients),
			})

		case msg := <-h.broadcast:
			h.broadcastWithPattern(msg.Pattern, msg.Data)
		}
	}
}

// Stop signals the hub to shut down. It finishes all client streams
// and causes Run to return. Safe to call multiple times.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.stopped {
		h.stopped = true
		close(h.done)
	}
}

// closeAllClients finishes every client stream during shutdown, so each
// connected consumer drains its buffer and sees end-of-stream.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		client.Close()
		delete(h.clients, id)
	}
	logger.Debug("[SSE_HUB] All clients closed during shutdown")
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastToPattern sends data to all clients matching the pattern.
// Pattern uses glob-style matching (e.g., "execution:*" or "execution:abc123").
func (h *Hub) BroadcastToPattern(pattern string, data []byte) {
	h.broadcast <- &Message{
		Pattern: pattern,
		Data:    data,
	}
}

// broadcastWithPattern yields data into every matching client's stream.
// This is called from the hub's main goroutine.
func (h *Hub) broadcastWithPattern(pattern string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	matchCount := 0
	backlogged := 0
	for clientID, client := range h.clients {
		matched, err := filepath.Match(pattern, clientID)
		if err != nil {
			logger.Error("[SSE_HUB] Pattern match error", map[string]interface{}{
				"pattern": pattern,
				"error":   err.Error(),
			})
			continue
		}
		if matched {
			if client.Send(data) {
				matchCount++
				if client.Backlogged() {
					backlogged++
				}
			}
		}
	}

	if matchCount > 0 {
		logger.Debug("[SSE_HUB] Broadcast sent",
			map[string]interface{}{
				"pattern":     pattern,
				"match_count": matchCount,
				"backlogged":  backlogged,
				"data_size":   len(data),
			},
		)
	} else {
		logger.Debug("[SSE_HUB] No clients matched pattern",
			map[string]interface{}{
				"pattern":       pattern,
				"total_clients": len(h.clients),
			},
		)
	}
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetClientIDs returns a list of all connected client IDs.
func (h *Hub) GetClientIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

// GetClient returns a client by ID, or nil if not found.
func (h *Hub) GetClient(id string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[id]
}

// Ensure Hub implements Broadcaster.
var _ Broadcaster = (*Hub)(nil)
