package config

import (
	"strings"
	"testing"

	"github.com/kbukum/bridgekit/resilience"
)

func TestBackpressureConfig_DefaultsToWatermark(t *testing.T) {
	cfg := BackpressureConfig{}
	cfg.ApplyDefaults()

	if cfg.Strategy != StrategyWatermark {
		t.Errorf("expected watermark default, got %q", cfg.Strategy)
	}
	if cfg.HighWatermark == 0 || cfg.LowWatermark == 0 {
		t.Error("defaults must fill in the watermarks")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaulted config must validate, got %v", err)
	}
}

func TestBackpressureConfig_RejectsInvertedWatermarks(t *testing.T) {
	cfg := BackpressureConfig{Strategy: StrategyWatermark, LowWatermark: 10, HighWatermark: 4}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "low_watermark") {
		t.Errorf("error should name the offending field, got %v", err)
	}
}

func TestBackpressureConfig_RejectsUnknownStrategy(t *testing.T) {
	cfg := BackpressureConfig{Strategy: "bogus"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unknown strategy")
	}
	if _, err := cfg.NewStrategy("test"); err == nil {
		t.Error("expected NewStrategy to refuse an unknown strategy")
	}
}

func TestBackpressureConfig_BuildsConfiguredStrategy(t *testing.T) {
	watermark := BackpressureConfig{Strategy: StrategyWatermark, LowWatermark: 2, HighWatermark: 4}
	s, err := watermark.NewStrategy("test")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*resilience.Watermark); !ok {
		t.Errorf("expected *resilience.Watermark, got %T", s)
	}

	bucket := BackpressureConfig{Strategy: StrategyTokenBucket, Rate: 10, Burst: 5}
	s, err = bucket.NewStrategy("test")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*resilience.TokenBucketStrategy); !ok {
		t.Errorf("expected *resilience.TokenBucketStrategy, got %T", s)
	}
}
