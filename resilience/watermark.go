package resilience

import "time"

// WatermarkConfig configures a high/low watermark back-pressure strategy.
type WatermarkConfig struct {
	// Name identifies this strategy for metrics/logging.
	Name string
	// Low is the buffer depth at or below which demand resumes.
	Low int
	// High is the buffer depth at which the producer is told to stop.
	High int
}

// DefaultWatermarkConfig returns sensible defaults.
func DefaultWatermarkConfig(name string) WatermarkConfig {
	return WatermarkConfig{
		Name: name,
		Low:  8,
		High: 32,
	}
}

// Watermark is a back-pressure strategy for producer/consumer stream
// bridges: after an append the producer keeps demand while the buffer is
// below High, and after a pop demand resumes once the buffer has drained
// below Low. Low < High gives the signal hysteresis so a producer is not
// flapped on and off around a single depth.
//
// Watermark is driven from inside a stream bridge's critical section, so
// it holds no lock of its own and must never be shared between bridges.
type Watermark struct {
	low  int
	high int
}

// NewWatermark creates a watermark strategy from config. A non-positive
// High takes the default; a Low that is not positive or exceeds High is
// set to High.
func NewWatermark(config WatermarkConfig) *Watermark {
	if config.High <= 0 {
		config.High = DefaultWatermarkConfig(config.Name).High
	}
	if config.Low <= 0 || config.Low > config.High {
		config.Low = config.High
	}
	return &Watermark{low: config.Low, high: config.High}
}

// OnYield reports whether the producer should keep producing after an
// append left the buffer at depth.
func (w *Watermark) OnYield(depth int) bool {
	return depth < w.high
}

// OnConsume reports whether the producer should resume after a pop left
// the buffer at depth (0 when the consumer parked on an empty buffer).
func (w *Watermark) OnConsume(depth int) bool {
	return depth < w.low
}

// TokenBucketStrategyConfig configures a token-bucket back-pressure
// strategy.
type TokenBucketStrategyConfig struct {
	// Name identifies this strategy for metrics/logging.
	Name string
	// Rate is the number of elements allowed per second.
	Rate float64
	// Burst is the bucket capacity.
	Burst int
}

// DefaultTokenBucketStrategyConfig returns sensible defaults.
func DefaultTokenBucketStrategyConfig(name string) TokenBucketStrategyConfig {
	return TokenBucketStrategyConfig{
		Name:  name,
		Rate:  100.0,
		Burst: 32,
	}
}

// TokenBucketStrategy paces a stream producer by element rate instead of
// buffer depth: every yielded element spends a token, and demand is
// reported only while at least one token remains. Refill follows the same
// elapsed-time token arithmetic as RateLimiter, but without RateLimiter's
// mutex — the strategy is only ever invoked inside the owning bridge's
// critical section, which is also why one strategy must never serve two
// bridges.
type TokenBucketStrategy struct {
	rate       float64
	burst      float64
	tokens     float64
	lastRefill time.Time
}

// NewTokenBucketStrategy creates a token-bucket strategy from config.
func NewTokenBucketStrategy(config TokenBucketStrategyConfig) *TokenBucketStrategy {
	if config.Rate <= 0 {
		config.Rate = DefaultTokenBucketStrategyConfig(config.Name).Rate
	}
	if config.Burst <= 0 {
		config.Burst = int(config.Rate)
	}
	return &TokenBucketStrategy{
		rate:       config.Rate,
		burst:      float64(config.Burst),
		tokens:     float64(config.Burst),
		lastRefill: time.Now(),
	}
}

// OnYield spends one token for the yielded element and reports whether
// the producer may continue.
func (s *TokenBucketStrategy) OnYield(int) bool {
	s.refill()
	s.tokens--
	if s.tokens < 0 {
		s.tokens = 0
		return false
	}
	return s.tokens >= 1
}

// OnConsume reports whether the bucket has refilled enough for the
// producer to resume.
func (s *TokenBucketStrategy) OnConsume(int) bool {
	s.refill()
	return s.tokens >= 1
}

func (s *TokenBucketStrategy) refill() {
	now := time.Now()
	elapsed := now.Sub(s.lastRefill).Seconds()
	s.lastRefill = now

	s.tokens += elapsed * s.rate
	if s.tokens > s.burst {
		s.tokens = s.burst
	}
}
