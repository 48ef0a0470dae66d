package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/kbukum/bridgekit/bridge"
)

// StreamMetrics holds the instruments for observing stream bridges.
type StreamMetrics struct {
	demandEdges  metric.Int64Counter
	terminations metric.Int64Counter
	elements     metric.Int64Counter
	bufferDepth  metric.Int64UpDownCounter
}

// NewStreamMetrics creates stream bridge instruments on the given meter.
func NewStreamMetrics(meter metric.Meter) (*StreamMetrics, error) {
	demandEdges, err := meter.Int64Counter("stream.demand.edges",
		metric.WithDescription("Demand edges signalled to stream producers"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.demand.edges counter: %w", err)
	}

	terminations, err := meter.Int64Counter("stream.terminations",
		metric.WithDescription("Terminated stream bridges"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.terminations counter: %w", err)
	}

	elements, err := meter.Int64Counter("stream.elements",
		metric.WithDescription("Elements yielded into stream bridges"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.elements counter: %w", err)
	}

	bufferDepth, err := meter.Int64UpDownCounter("stream.buffer.depth",
		metric.WithDescription("Elements currently buffered across stream bridges"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.buffer.depth gauge: %w", err)
	}

	return &StreamMetrics{
		demandEdges:  demandEdges,
		terminations: terminations,
		elements:     elements,
		bufferDepth:  bufferDepth,
	}, nil
}

// RecordYield records elements entering a bridge's buffer.
func (m *StreamMetrics) RecordYield(ctx context.Context, stream string, n int) {
	attrs := metric.WithAttributes(attribute.String("stream", stream))
	m.elements.Add(ctx, int64(n), attrs)
	m.bufferDepth.Add(ctx, int64(n), attrs)
}

// RecordConsume records one element leaving a bridge's buffer.
func (m *StreamMetrics) RecordConsume(ctx context.Context, stream string) {
	m.bufferDepth.Add(ctx, -1, metric.WithAttributes(attribute.String("stream", stream)))
}

// InstrumentedDelegate wraps a stream bridge Delegate so demand edges and
// terminations show up on the meter. The bridge invokes delegate methods
// outside its own lock, so recording here can never contend with a
// transition; for the same reason the wrapped inner delegate must still
// not call back into the stream.
type InstrumentedDelegate struct {
	metrics *StreamMetrics
	stream  string
	inner   bridge.Delegate
}

// NewInstrumentedDelegate wraps inner (which may be nil) for the named
// stream.
func NewInstrumentedDelegate(metrics *StreamMetrics, stream string, inner bridge.Delegate) *InstrumentedDelegate {
	return &InstrumentedDelegate{metrics: metrics, stream: stream, inner: inner}
}

// ProduceMore counts the demand edge and forwards it.
func (d *InstrumentedDelegate) ProduceMore() {
	d.metrics.demandEdges.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("stream", d.stream)))
	if d.inner != nil {
		d.inner.ProduceMore()
	}
}

// DidTerminate counts the termination and forwards it.
func (d *InstrumentedDelegate) DidTerminate() {
	d.metrics.terminations.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("stream", d.stream)))
	if d.inner != nil {
		d.inner.DidTerminate()
	}
}
