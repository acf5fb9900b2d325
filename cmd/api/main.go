package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/clinivoice/callflow/internal/api/router"
	"github.com/clinivoice/callflow/internal/callflow"
	appconfig "github.com/clinivoice/callflow/internal/config"
	"github.com/clinivoice/callflow/internal/delegate"
	"github.com/clinivoice/callflow/internal/http/handlers"
	"github.com/clinivoice/callflow/internal/observability/metrics"
	"github.com/clinivoice/callflow/pkg/logging"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err == nil {
		// Only informative when the file exists.
		fmt.Println("loaded configuration from .env")
	}

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting callflow API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"session_backend", cfg.SessionBackend,
	)

	store, cleanup, err := newSessionStore(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize session store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// Delegated business calls, with the local FORMAT_ID fallback.
	var delegator callflow.Delegator
	if cfg.DelegateBaseURL != "" {
		client := delegate.NewClient(cfg.DelegateBaseURL, cfg.DelegateDomain, cfg.DelegateTimeout, logger)
		delegator = delegate.NewFormatFallback(client, logger)
	} else {
		logger.Warn("no delegate endpoint configured; delegated calls will fail closed")
		delegator = delegate.NewFormatFallback(noDelegator{}, logger)
	}

	registry := prometheus.NewRegistry()
	callMetrics := metrics.NewCallMetrics(registry)

	dispatcher := callflow.NewDispatcher(logger,
		callflow.WithClinicName(cfg.ClinicName),
	)
	engine := callflow.NewEngine(callflow.EngineConfig{
		Store:      store,
		Dispatcher: dispatcher,
		Delegator:  delegator,
		Logger:     logger,
		Metrics:    callMetrics,
	})

	// Setup router
	r := router.New(&router.Config{
		Logger:         logger,
		CallWebhooks:   handlers.NewCallWebhookHandler(engine, logger),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// newSessionStore builds the configured session backend. The cleanup closes
// whatever connection the backend holds.
func newSessionStore(cfg *appconfig.Config, logger *logging.Logger) (callflow.SessionStore, func(), error) {
	switch cfg.SessionBackend {
	case "", "memory":
		logger.Warn("using in-memory session store; sessions do not survive restarts")
		return callflow.NewMemorySessionStore(), func() {}, nil

	case "redis":
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		rdb := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return callflow.NewRedisSessionStore(rdb), func() { _ = rdb.Close() }, nil

	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("DATABASE_URL is required for the postgres session backend")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres ping: %w", err)
		}
		return callflow.NewPostgresSessionStore(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}

// noDelegator fails every delegated call; the FORMAT_ID fallback still makes
// local ID normalization work without an external service.
type noDelegator struct{}

func (noDelegator) Call(context.Context, callflow.DelegateRequest) callflow.DelegateResult {
	return callflow.DelegateResult{}
}
