// ABOUTME: Gateway router configuration and setup
// ABOUTME: Serves the backend's /api routes to the browser through the resilient client

package api

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/richochetclementine1315/Quill/api/handlers"
	"github.com/richochetclementine1315/Quill/api/middleware"
	"github.com/richochetclementine1315/Quill/core/interfaces"
	httpInfra "github.com/richochetclementine1315/Quill/infrastructure/http/standard"
)

// cachePingTimeout bounds the cache readiness check
const cachePingTimeout = 2 * time.Second

// APIConfig holds configuration for the gateway
type APIConfig struct {
	Logger         interfaces.Logger
	AllowedOrigins []string

	// RateLimit is requests per second per client IP; 0 disables limiting
	RateLimit float64
	RateBurst int

	// ProbeTimeout bounds the readiness probe
	ProbeTimeout time.Duration

	// Metrics serves /metrics when set
	Metrics prometheus.Gatherer

	// Cache joins the readiness check when it can be pinged
	Cache interfaces.Cache
}

// NewAPI creates the Huma API on router. The OpenAPI document is served at
// /openapi.json and the docs at /docs.
func NewAPI(router chi.Router) huma.API {
	config := huma.DefaultConfig("Quill Gateway", "1.0.0")
	config.Info.Description = "Serves the Quill blog API to the browser, waking and retrying the backend as needed"
	return humachi.New(router, config)
}

// NewRouter creates the gateway router in front of backend
func NewRouter(backend handlers.Backend, cfg APIConfig) chi.Router {
	router := chi.NewRouter()

	// CORS first so preflights are never rate limited
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Idempotency-Key", httpInfra.RequestIDHeader},
		ExposedHeaders:   []string{httpInfra.RequestIDHeader, handlers.StaleHeader, handlers.AttemptsHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.Logger != nil {
		router.Use(middleware.RequestLoggingMiddleware(cfg.Logger))
	}
	router.Use(chimw.Recoverer)
	router.Use(chimw.Compress(5, "application/json"))

	health := handlers.NewHealthHandler(backend, cfg.ProbeTimeout)
	if pinger, ok := cfg.Cache.(handlers.Pinger); ok {
		health.CheckCache(pinger, cachePingTimeout)
	}
	router.Get("/live", health.Live)
	router.Get("/ready", health.Ready)
	if cfg.Metrics != nil {
		router.Handle("/metrics", promhttp.HandlerFor(cfg.Metrics, promhttp.HandlerOpts{}))
	}

	router.Group(func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)))
		}
		r.Use(middleware.SessionMiddleware)

		api := NewAPI(r)
		health.RegisterRoutes(api)
		handlers.NewAuthHandler(backend).RegisterRoutes(api)
		handlers.NewPostsHandler(backend).RegisterRoutes(api)
		handlers.NewUploadHandler(backend).RegisterRoutes(api)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not found"}`))
	})

	return router
}
