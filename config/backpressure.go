package config

import (
	"fmt"

	"github.com/kbukum/bridgekit/bridge"
	"github.com/kbukum/bridgekit/resilience"
	"github.com/kbukum/bridgekit/validation"
)

// Back-pressure strategy kinds accepted by BackpressureConfig.Strategy.
const (
	StrategyWatermark   = "watermark"
	StrategyTokenBucket = "token_bucket"
)

// BackpressureConfig selects and parameterizes the back-pressure strategy
// a service installs on its stream bridges. Embed it next to
// ServiceConfig in a service's config struct:
//
//	type MyConfig struct {
//	    config.ServiceConfig    `yaml:",inline" mapstructure:",squash"`
//	    Backpressure config.BackpressureConfig `yaml:"backpressure" mapstructure:"backpressure"`
//	}
type BackpressureConfig struct {
	Strategy string `yaml:"strategy" mapstructure:"strategy" validate:"omitempty,oneof=watermark token_bucket"`

	// Watermark strategy fields.
	LowWatermark  int `yaml:"low_watermark" mapstructure:"low_watermark" validate:"gte=0"`
	HighWatermark int `yaml:"high_watermark" mapstructure:"high_watermark" validate:"gte=0"`

	// Token-bucket strategy fields.
	Rate  float64 `yaml:"rate" mapstructure:"rate" validate:"gte=0"`
	Burst int     `yaml:"burst" mapstructure:"burst" validate:"gte=0"`
}

// ApplyDefaults fills in an unset strategy and its parameters.
func (c *BackpressureConfig) ApplyDefaults() {
	if c.Strategy == "" {
		c.Strategy = StrategyWatermark
	}
	switch c.Strategy {
	case StrategyWatermark:
		if c.HighWatermark == 0 {
			defaults := resilience.DefaultWatermarkConfig("")
			c.LowWatermark = defaults.Low
			c.HighWatermark = defaults.High
		}
	case StrategyTokenBucket:
		if c.Rate == 0 {
			defaults := resilience.DefaultTokenBucketStrategyConfig("")
			c.Rate = defaults.Rate
			c.Burst = defaults.Burst
		}
	}
}

// Validate checks the struct tags plus the cross-field constraints the
// tags cannot express.
func (c *BackpressureConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("config.backpressure: %w", err)
	}
	if c.Strategy == StrategyWatermark && c.LowWatermark > c.HighWatermark {
		return fmt.Errorf("config.backpressure: low_watermark (%d) must not exceed high_watermark (%d)", c.LowWatermark, c.HighWatermark)
	}
	return nil
}

// NewStrategy builds a fresh strategy instance for one stream bridge.
// Strategies are stateful and single-bridge; call this once per bridge,
// never share the result.
func (c *BackpressureConfig) NewStrategy(name string) (bridge.BackPressureStrategy, error) {
	switch c.Strategy {
	case StrategyWatermark, "":
		return resilience.NewWatermark(resilience.WatermarkConfig{
			Name: name,
			Low:  c.LowWatermark,
			High: c.HighWatermark,
		}), nil
	case StrategyTokenBucket:
		return resilience.NewTokenBucketStrategy(resilience.TokenBucketStrategyConfig{
			Name:  name,
			Rate:  c.Rate,
			Burst: c.Burst,
		}), nil
	default:
		return nil, fmt.Errorf("config.backpressure: unknown strategy %q", c.Strategy)
	}
}
