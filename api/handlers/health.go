// ABOUTME: Health endpoints for the gateway
// ABOUTME: Wakes the backend on demand and reports readiness from the memoized probe and the cache

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/heptiolabs/healthcheck"

	"github.com/richochetclementine1315/Quill/core/probe"
)

// ErrBackendAsleep is reported by the readiness check while the backend does not answer
var ErrBackendAsleep = errors.New("backend is not awake")

// Pinger is implemented by stale-read caches that hold a connection
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves /api/health and the liveness and readiness endpoints
type HealthHandler struct {
	backend Backend
	checks  healthcheck.Handler
}

// NewHealthHandler creates a health handler. probeTimeout bounds a readiness probe.
func NewHealthHandler(backend Backend, probeTimeout time.Duration) *HealthHandler {
	if probeTimeout <= 0 {
		probeTimeout = probe.DefaultTimeout
	}
	h := &HealthHandler{backend: backend, checks: healthcheck.NewHandler()}
	h.checks.AddLivenessCheck("goroutines", healthcheck.GoroutineCountCheck(10000))
	h.checks.AddReadinessCheck("backend", healthcheck.Timeout(h.backendAwake, probeTimeout))
	return h
}

// CheckCache makes readiness depend on the stale-read cache answering a ping
func (h *HealthHandler) CheckCache(cache Pinger, timeout time.Duration) {
	h.checks.AddReadinessCheck("cache", healthcheck.Timeout(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return cache.Ping(ctx)
	}, timeout))
}

// RegisterRoutes registers /api/health on the Huma API
func (h *HealthHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "wakeBackend",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Wake the backend",
		Description: "Probes the backend, sharing the probe with any other caller",
		Tags:        []string{"Health"},
	}, h.Wake)
}

// Live reports whether the gateway process is healthy
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	h.checks.LiveEndpoint(w, r)
}

// Ready reports whether the backend has answered a probe and the cache is reachable
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	h.checks.ReadyEndpoint(w, r)
}

// WakeOutput is returned once the backend answered
type WakeOutput struct {
	Body struct {
		Status string `json:"status" example:"ok"`
	}
}

// Wake probes the backend
func (h *HealthHandler) Wake(ctx context.Context, input *struct{}) (*WakeOutput, error) {
	if !h.backend.Probe(ctx) {
		return nil, huma.ErrorWithHeaders(
			huma.Error503ServiceUnavailable(ErrBackendAsleep.Error()),
			http.Header{"Retry-After": {strconv.Itoa(RetryAfter)}},
		)
	}
	out := &WakeOutput{}
	out.Body.Status = "ok"
	return out, nil
}

// backendAwake answers from the memoized state once the backend is up,
// and probes again while it is not.
func (h *HealthHandler) backendAwake() error {
	awake, resolved := h.backend.Awake()
	if resolved && awake {
		return nil
	}
	if resolved {
		h.backend.ResetProbe()
	}
	if !h.backend.Probe(context.Background()) {
		return ErrBackendAsleep
	}
	return nil
}
