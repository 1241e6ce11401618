// ABOUTME: Main entry point for the Quill gateway
// ABOUTME: Wires config, cache, metrics and the resilient client, then serves the browser

package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"

	"github.com/richochetclementine1315/Quill/api"
	"github.com/richochetclementine1315/Quill/core/interfaces"
	"github.com/richochetclementine1315/Quill/infrastructure/cache/memory"
	"github.com/richochetclementine1315/Quill/infrastructure/credentials"
	quillmetrics "github.com/richochetclementine1315/Quill/infrastructure/metrics/prometheus"
	"github.com/richochetclementine1315/Quill/pkg/config"
	"github.com/richochetclementine1315/Quill/pkg/featureflags"
	"github.com/richochetclementine1315/Quill/quill"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := quill.DefaultLogger(cfg.Log)
	flags := featureflags.NewEnvManager("")
	ctx := context.Background()

	logger.Info("Starting Quill gateway", map[string]interface{}{
		"port":       cfg.Server.Port,
		"backend":    cfg.API.BaseURL,
		"cache_type": cfg.Cache.Type,
		"flags":      flags.GetAllFlags(),
	})

	cache := newCache(cfg, logger)
	if closer, ok := cache.(io.Closer); ok {
		defer closer.Close()
	}

	options := []quill.Option{
		quill.WithConfig(cfg),
		quill.WithLogger(logger),
		quill.WithCredentials(credentials.NewForwarding()),
		quill.WithFlags(flags),
		quill.WithTracer(otel.Tracer("github.com/richochetclementine1315/Quill")),
	}
	if cache != nil {
		options = append(options, quill.WithCache(cache))
	}

	apiConfig := api.APIConfig{
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ProbeTimeout:   cfg.API.ProbeTimeout,
		Cache:          cache,
	}
	if flags.IsEnabled(ctx, featureflags.RateLimitEnabled) {
		apiConfig.RateLimit = cfg.Server.RateLimit
		apiConfig.RateBurst = cfg.Server.RateBurst
	}
	if flags.IsEnabled(ctx, featureflags.MetricsEnabled) {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics, err := quillmetrics.New(registry)
		if err != nil {
			log.Fatalf("Failed to register metrics: %v", err)
		}
		options = append(options, quill.WithMetrics(metrics))
		apiConfig.Metrics = registry
	}

	client, err := quill.NewClient(options...)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	// Start waking the backend while the server comes up
	go client.Probe(ctx)

	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     api.NewRouter(client, apiConfig),
		ReadTimeout: 15 * time.Second,
		// A cold backend plus retries can exceed a minute
		WriteTimeout: cfg.API.RequestTimeout*time.Duration(cfg.API.MaxRetries+1) + cfg.API.BackoffCap*time.Duration(cfg.API.MaxRetries),
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", map[string]interface{}{
			"address": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", map[string]interface{}{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	}

	logger.Info("Server stopped", nil)
}

// newCache builds the configured stale-read cache, falling back to memory
// when the configured store is unreachable.
func newCache(cfg *config.Config, logger interfaces.Logger) interfaces.Cache {
	cache, err := quill.NewCache(cfg.Cache)
	if err != nil {
		logger.Error("Failed to create cache, falling back to memory", map[string]interface{}{
			"cache_type": cfg.Cache.Type,
			"error":      err.Error(),
		})
		return memory.NewMemoryCache()
	}
	return cache
}
