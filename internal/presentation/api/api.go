package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopmesh/relay/internal/infrastructure/configs"
	"github.com/shopmesh/relay/internal/infrastructure/ratelimiter"
	healthHandler "github.com/shopmesh/relay/internal/presentation/handler/health"
	presenceHandler "github.com/shopmesh/relay/internal/presentation/handler/presence"
	relaywsHandler "github.com/shopmesh/relay/internal/presentation/handler/relayws"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type Application struct {
	config          configs.Config
	relayHandler    relaywsHandler.Handler
	healthHandler   healthHandler.Handler
	presenceHandler presenceHandler.Handler
	metricsHandler  http.Handler
	logger          *zap.SugaredLogger
	ratelimiter     ratelimiter.Limiter
}

func NewApplication(
	config configs.Config,
	relayHandler relaywsHandler.Handler,
	healthHandler healthHandler.Handler,
	presenceHandler presenceHandler.Handler,
	metricsHandler http.Handler,
	logger *zap.SugaredLogger,
	ratelimiter ratelimiter.Limiter,
) *Application {
	return &Application{
		config:          config,
		relayHandler:    relayHandler,
		healthHandler:   healthHandler,
		presenceHandler: presenceHandler,
		metricsHandler:  metricsHandler,
		logger:          logger,
		ratelimiter:     ratelimiter,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(app.rateLimiterMiddleware)
	r.Use(app.enableCors)

	// The websocket endpoint sits outside any per-request timeout: relay
	// connections are long-lived.
	r.Get("/ws", app.relayHandler.ConnectHandler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/presence", func(r chi.Router) {
			r.Get("/", app.presenceHandler.ListOnlineHandler)
			r.Get("/{userId}", app.presenceHandler.GetUserHandler)
		})

		r.Get("/health", app.healthHandler.GetHealth)
		r.Get("/healthz", app.healthHandler.GetHealth)
		r.Get("/ready", app.healthHandler.GetHealth)
		r.Get("/live", app.healthHandler.GetHealth)
	})

	r.Method(http.MethodGet, "/metrics", app.metricsHandler)

	return otelhttp.NewHandler(r, "relay-http")
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", srv.Addr)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", srv.Addr)

	return nil
}
