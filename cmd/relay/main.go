package main

import (
	"context"
	"expvar"
	"log"
	"runtime"

	"github.com/shopmesh/relay/internal/infrastructure/configs"
	"github.com/shopmesh/relay/internal/infrastructure/metrics"
	"github.com/shopmesh/relay/internal/infrastructure/ratelimiter"
	"github.com/shopmesh/relay/internal/infrastructure/tracing"
	"github.com/shopmesh/relay/internal/presentation/api"
	"github.com/shopmesh/relay/internal/presentation/handler/health"
	"github.com/shopmesh/relay/internal/presentation/handler/presence"
	"github.com/shopmesh/relay/internal/presentation/handler/relayws"
	"github.com/shopmesh/relay/internal/relay"
	"go.uber.org/zap"
)

const (
	serviceName = "shopmesh-relay"
)

func main() {
	tracerCfg := tracing.NewDefaultConfig(serviceName)

	sh, err := tracing.InitTracer(tracerCfg)
	if err != nil {
		log.Fatalf("Failed to initialize the tracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(ctx)

	logger := zap.Must(zap.NewProduction()).Sugar()
	defer logger.Sync()

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	var auth *relay.JoinAuth
	if cfg.Auth.Required {
		if cfg.Auth.Secret == "" {
			log.Fatal("auth.required is set but auth.secret is empty")
		}
		auth = relay.NewJoinAuth(cfg.Auth.Secret)
	}

	relayMetrics := metrics.NewRelay()
	state := relay.NewState()

	hub := relay.NewHub(state, logger, relayMetrics, auth, relay.Options{
		SendQueueDepth: cfg.Relay.SendQueueDepth,
		WriteTimeout:   cfg.Relay.WriteTimeout,
		PongTimeout:    cfg.Relay.PongTimeout,
		MaxMessageSize: cfg.Relay.MaxMessageSize,
	})
	go hub.Run(ctx)

	relayHandler := relayws.NewHandler(hub, logger, cfg.HTTP.AllowedOrigins)
	healthHandler := health.NewHandler()
	presenceHandler := presence.NewHandler(hub)

	rl := ratelimiter.NewFixedWindow(cfg.RateLimiter.RequestsPerTimeFrame, cfg.RateLimiter.TimeFrame)
	defer rl.Close()

	app := api.NewApplication(
		*cfg,
		*relayHandler,
		*healthHandler,
		*presenceHandler,
		relayMetrics.Handler(),
		logger,
		rl,
	)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	logger.Fatal(app.Run(mux))
}
