package sse

import (
	"bytes"
	"fmt"
)

// Generic SSE event type constants (infrastructure only).
// Domain-specific event types should be defined in your application.
const (
	// EventTypeConnected is sent when a client successfully connects.
	EventTypeConnected = "connected"

	// EventTypeKeepAlive is used for keep-alive comments.
	EventTypeKeepAlive = "keepalive"

	// EventTypeMessage is a generic message event.
	EventTypeMessage = "message"

	// EventTypeError is sent when an error occurs.
	EventTypeError = "error"

	// EventTypeMetric is sent for metric/telemetry events.
	EventTypeMetric = "metric"
)

// FormatEvent frames data as one SSE event. A non-empty event name adds
// the "event:" line; multi-line payloads are split across "data:" lines
// per the SSE wire format.
func FormatEvent(event string, data []byte) []byte {
	var buf bytes.Buffer
	if event != "" {
		fmt.Fprintf(&buf, "event: %s\n", event)
	}
	for _, line := range bytes.Split(data, []byte("\n")) {
		fmt.Fprintf(&buf, "data: %s\n", line)
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}

// FormatComment frames text as an SSE comment line, used for keep-alives.
func FormatComment(text string) []byte {
	return []byte(fmt.Sprintf(": %s\n\n", text))
}
