// Command bridgedemo runs a small service around the stream bridge: a
// heartbeat producer feeding every connected SSE client through
// per-client bridges, and an HTTP API for opening ad-hoc streams.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/bridgekit/bridge"
	"github.com/kbukum/bridgekit/component"
	"github.com/kbukum/bridgekit/config"
	"github.com/kbukum/bridgekit/httpapi"
	"github.com/kbukum/bridgekit/logger"
	"github.com/kbukum/bridgekit/observability"
	"github.com/kbukum/bridgekit/pipeline"
	"github.com/kbukum/bridgekit/sse"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

// TelemetryConfig toggles the OTLP exporters.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
}

// DemoConfig is the service configuration.
type DemoConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Backpressure config.BackpressureConfig `yaml:"backpressure" mapstructure:"backpressure"`
	Server       ServerConfig              `yaml:"server" mapstructure:"server"`
	Telemetry    TelemetryConfig           `yaml:"telemetry" mapstructure:"telemetry"`
}

type heartbeat struct {
	Seq int       `json:"seq"`
	At  time.Time `json:"at"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "bridgedemo: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg DemoConfig
	if err := config.LoadConfig("bridgedemo", &cfg); err != nil {
		return err
	}
	if cfg.Name == "" {
		cfg.Name = "bridgedemo"
	}
	cfg.ApplyDefaults()
	cfg.Backpressure.ApplyDefaults()
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Backpressure.Validate(); err != nil {
		return err
	}

	logger.Init(cfg.Logging)
	log := logger.New(&cfg.Logging, cfg.Name)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry is optional; without a collector endpoint the meter and
	// tracer stay on their no-op globals.
	if cfg.Telemetry.Enabled {
		meterCfg := observability.DefaultMeterConfig(cfg.Name)
		if cfg.Telemetry.Endpoint != "" {
			meterCfg.Endpoint = cfg.Telemetry.Endpoint
		}
		mp, err := observability.InitMeter(ctx, &meterCfg)
		if err != nil {
			return err
		}
		defer mp.Shutdown(context.Background())

		tracerCfg := observability.DefaultTracerConfig(cfg.Name)
		if cfg.Telemetry.Endpoint != "" {
			tracerCfg.Endpoint = cfg.Telemetry.Endpoint
		}
		tp, err := observability.InitTracer(ctx, tracerCfg)
		if err != nil {
			return err
		}
		defer tp.Shutdown(context.Background())
	}

	streamMetrics, err := observability.NewStreamMetrics(observability.Meter(cfg.Name))
	if err != nil {
		return err
	}

	newStrategy := func() bridge.BackPressureStrategy {
		s, err := cfg.Backpressure.NewStrategy(cfg.Name)
		if err != nil {
			panic(err)
		}
		return s
	}

	sseComp := sse.NewComponent("/streams/:id/events", sse.WithStrategyFactory(newStrategy))

	// The heartbeat producer runs through its own instrumented bridge:
	// the source component yields on a ticker, and a pipeline drains the
	// consumer side into the hub's broadcast.
	heartbeatStrategy := newStrategy()
	heartbeatDelegate := observability.NewInstrumentedDelegate(streamMetrics, "heartbeat", nil)
	heartbeatSource, heartbeatPipe := pipeline.NewBridge[heartbeat](heartbeatStrategy, heartbeatDelegate)

	heartbeatComp := component.NewSourceComponent("heartbeat", heartbeatSource,
		func(ctx context.Context, source *bridge.Source[heartbeat, error]) {
			ticker := time.NewTicker(5 * time.Second)
			defer ticker.Stop()
			for seq := 0; ; seq++ {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
				streamMetrics.RecordYield(ctx, "heartbeat", 1)
				if source.Yield(heartbeat{Seq: seq, At: time.Now().UTC()}) == bridge.Dropped {
					return
				}
			}
		})

	go func() {
		err := pipeline.Drain(
			pipeline.Map(heartbeatPipe, func(_ context.Context, hb heartbeat) ([]byte, error) {
				return json.Marshal(hb)
			}),
			func(drainCtx context.Context, data []byte) error {
				streamMetrics.RecordConsume(drainCtx, "heartbeat")
				sseComp.Hub().BroadcastToPattern("*", data)
				return nil
			},
		).Run(ctx)
		if err != nil && ctx.Err() == nil {
			log.Error("heartbeat pipeline stopped", map[string]interface{}{"error": err.Error()})
		}
	}()

	apiHandler := httpapi.NewHandler(sseComp.Hub(), log)
	defer apiHandler.Shutdown()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	apiHandler.RegisterRoutes(router)

	registry := component.NewRegistry()
	if err := registry.Register(sseComp); err != nil {
		return err
	}
	if err := registry.Register(heartbeatComp); err != nil {
		return err
	}
	if err := registry.StartAll(ctx); err != nil {
		return err
	}

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}
	serverErr := make(chan error, 1)
	go func() {
		log.Info("listening", map[string]interface{}{"addr": server.Addr})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-serverErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown", map[string]interface{}{"error": err.Error()})
	}
	if err := registry.StopAll(shutdownCtx); err != nil {
		log.Warn("component shutdown", map[string]interface{}{"error": err.Error()})
	}

	return nil
}
