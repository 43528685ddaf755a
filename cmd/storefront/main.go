// Storefront - Composes GLO storefront pages for the ph and id stores.
// Designed for Cloud Run deployment; Redis is optional shared state.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/cachewarm"
	"storefront/internal/composition"
	"storefront/internal/config"
	"storefront/internal/graphql"
	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/session"
	"storefront/internal/storage"
	"storefront/internal/store"
	"storefront/internal/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Initialize structured logger
	logger := initLogger()

	// Load configuration
	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.Info("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.String("version", cfg.Version),
		slog.String("data_uri", cfg.DataURI),
		slog.Bool("multistores", cfg.Features.Multistores),
		slog.Bool("redis", cfg.RedisURL != ""),
	)

	backend, closeBackend, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer closeBackend()

	m := metrics.New()

	// Upstream GraphQL client
	serverErrors := graphql.NewServerErrorLink(func(ctx context.Context) {
		logger.WarnContext(ctx, "shopper session expired upstream")
	})
	httpClient := &http.Client{
		Timeout: cfg.UpstreamTimeout,
		Transport: transport.New(transport.Options{
			Timeout:       cfg.UpstreamTimeout,
			Fingerprint:   cfg.IsProduction(),
			ClientName:    "storefront",
			ClientVersion: cfg.ClientVersion(),
		}),
	}
	gql := graphql.NewClient(cfg.DataURI, httpClient,
		graphql.DefaultLinks(serverErrors, func(ctx context.Context) {
			logger.InfoContext(ctx, "cart no longer known upstream")
		}),
		m, logger)

	registry := store.NewRegistry(store.Predefined(cfg.DataOrigin()))
	configs := store.NewCached(gql, backend, cfg.StoreConfigTTL, logger)
	composer := composition.NewComposer(registry, configs, gql, composition.Options{
		AssetBase: cfg.PublicURL,
		Metrics:   m,
	}, logger)

	// Background cache warming
	if cfg.Features.CacheWarmer {
		warmer := cachewarm.New(registry.All(), configs, composer, m, logger)
		stop, err := warmer.Start(ctx, cfg.CacheWarmSchedule)
		if err != nil {
			return fmt.Errorf("starting cache warmer: %w", err)
		}
		defer stop()
	}

	h := handler.New(handler.Deps{
		Config:       cfg,
		Registry:     registry,
		Configs:      configs,
		Composer:     composer,
		Registrar:    gql,
		Extractor:    gql,
		Sessions:     backend,
		ServerErrors: serverErrors,
		Metrics:      m,
	}, logger)

	// Setup routes
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	// Apply middleware chain: recovery → request id → logging → session → metrics → mux
	// Metrics wraps the mux directly so the matched route pattern is visible
	httpHandler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logging(logger),
		session.Middleware(logger),
	)(m.InstrumentHandler(mux))

	// Create HTTP server with timeouts
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Channel for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Channel for server errors
	serverErr := make(chan error, 1)

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			slog.String("port", cfg.Port),
			slog.String("addr", server.Addr),
		)
		serverErr <- server.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErr:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-shutdown:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give outstanding requests time to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			// Force close if graceful shutdown fails
			server.Close()
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

// openStorage connects Redis when REDIS_URL is set and falls back to the
// in-process store otherwise.
func openStorage(ctx context.Context, cfg *config.Config) (storage.Store, func(), error) {
	if cfg.RedisURL == "" {
		return storage.NewMemory(), func() {}, nil
	}
	r, err := storage.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return r, func() { r.Close() }, nil
}

// initLogger creates a structured logger configured for the environment.
// Production uses JSON format for GCP Cloud Logging compatibility.
// Development uses text format for readability.
func initLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	if os.Getenv("ENVIRONMENT") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
