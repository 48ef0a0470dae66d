package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/bridgekit/errors"
	"github.com/kbukum/bridgekit/logger"
	"github.com/kbukum/bridgekit/sse"
	"github.com/kbukum/bridgekit/validation"
)

// CreateStreamRequest configures a demo producer opened via POST /streams.
type CreateStreamRequest struct {
	// Count is how many events the producer emits before finishing.
	Count int `json:"count" validate:"required,gt=0,lte=100000"`
	// IntervalMs is the pause between events.
	IntervalMs int `json:"interval_ms" validate:"gte=0,lte=60000"`
}

// CreateStreamResponse reports the opened stream.
type CreateStreamResponse struct {
	StreamID  string `json:"stream_id"`
	EventsURL string `json:"events_url"`
}

// StreamEvent is one produced event as delivered over SSE.
type StreamEvent struct {
	StreamID string `json:"stream_id"`
	Seq      int    `json:"seq"`
	At       string `json:"at"`
}

// Handler wires the stream API onto a gin router. Producers broadcast
// into the hub; each connected consumer drains its own bridge-backed
// client.
type Handler struct {
	hub *sse.Hub
	log *logger.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewHandler creates a Handler around hub.
func NewHandler(hub *sse.Hub, log *logger.Logger) *Handler {
	return &Handler{
		hub:     hub,
		log:     log,
		cancels: make(map[string]context.CancelFunc),
	}
}

// RegisterRoutes mounts the stream endpoints on router.
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.POST("/streams", h.createStream)
	router.DELETE("/streams/:id", h.stopStream)
	router.GET("/streams/:id/events", h.streamEvents)
}

// Shutdown stops every producer this handler started.
func (h *Handler) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, cancel := range h.cancels {
		cancel()
		delete(h.cancels, id)
	}
}

func (h *Handler) createStream(c *gin.Context) {
	var req CreateStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.InvalidInput("body", err.Error()))
		return
	}
	if err := validation.Validate(&req); err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			writeError(c, appErr)
		} else {
			writeError(c, errors.Validation(err.Error()))
		}
		return
	}

	streamID := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	h.mu.Lock()
	h.cancels[streamID] = cancel
	h.mu.Unlock()

	go h.produce(ctx, streamID, req)

	h.log.Info("stream opened", map[string]interface{}{
		"stream_id":   streamID,
		"count":       req.Count,
		"interval_ms": req.IntervalMs,
	})

	c.JSON(http.StatusCreated, CreateStreamResponse{
		StreamID:  streamID,
		EventsURL: fmt.Sprintf("/streams/%s/events", streamID),
	})
}

// produce broadcasts the configured number of events to every consumer
// subscribed to this stream's pattern, then cleans up after itself.
func (h *Handler) produce(ctx context.Context, streamID string, req CreateStreamRequest) {
	defer func() {
		h.mu.Lock()
		delete(h.cancels, streamID)
		h.mu.Unlock()
	}()

	interval := time.Duration(req.IntervalMs) * time.Millisecond
	for seq := 0; seq < req.Count; seq++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		data, _ := json.Marshal(StreamEvent{
			StreamID: streamID,
			Seq:      seq,
			At:       time.Now().UTC().Format(time.RFC3339Nano),
		})
		h.hub.BroadcastToPattern(streamPattern(streamID)+":*", data)

		if interval > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(interval):
			}
		}
	}
}

func (h *Handler) stopStream(c *gin.Context) {
	streamID := c.Param("id")
	if _, err := validation.ValidateUUID("id", streamID); err != nil {
		writeError(c, errors.InvalidFormat("id", "uuid"))
		return
	}

	h.mu.Lock()
	cancel, ok := h.cancels[streamID]
	if ok {
		delete(h.cancels, streamID)
	}
	h.mu.Unlock()

	if !ok {
		writeError(c, errors.NotFound("stream", streamID))
		return
	}
	cancel()
	c.Status(http.StatusNoContent)
}

func (h *Handler) streamEvents(c *gin.Context) {
	streamID := c.Param("id")
	if _, err := validation.ValidateUUID("id", streamID); err != nil {
		writeError(c, errors.InvalidFormat("id", "uuid"))
		return
	}

	// Each connection gets its own client ID under the stream's pattern,
	// so one stream can feed several independent consumers, each with a
	// private bridge.
	clientID := streamPattern(streamID) + ":" + uuid.NewString()
	sse.ServeSSE(h.hub, c.Writer, c.Request, clientID)
}

// streamPattern is the broadcast prefix for one stream's consumers. The
// trailing wildcard matches the per-connection suffix.
func streamPattern(streamID string) string {
	return "stream:" + streamID
}

func writeError(c *gin.Context, appErr *errors.AppError) {
	c.JSON(appErr.HTTPStatus, appErr.ToResponse())
}
