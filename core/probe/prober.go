// ABOUTME: Health prober wakes a suspended backend with one shared liveness request
// ABOUTME: Concurrent callers join the in-flight probe; the result is memoized until Reset

package probe

import (
	"context"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/richochetclementine1315/Quill/core/flight"
	"github.com/richochetclementine1315/Quill/core/interfaces"
)

// DefaultTimeout covers the observed cold-start ceiling of the hosting platform
const DefaultTimeout = 75 * time.Second

const wakeKey = "wake"

// Config holds prober configuration
type Config struct {
	// URL is the absolute liveness URL
	URL string

	// Timeout bounds the single probe request
	Timeout time.Duration

	// UserAgent is sent with the probe
	UserAgent string
}

type wakeState struct {
	awake    bool
	status   int
	resolved time.Time
}

// Prober issues the liveness probe and remembers whether the backend answered
type Prober struct {
	cfg     Config
	client  interfaces.HTTPClient
	logger  interfaces.Logger
	metrics interfaces.Metrics

	group *flight.Group[bool]
	state atomic.Pointer[wakeState]
}

// NewProber creates a prober using the transport, logger and metrics from deps
func NewProber(cfg Config, deps interfaces.Dependencies) *Prober {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Prober{
		cfg:     cfg,
		client:  deps.HTTPClient,
		logger:  deps.Logger,
		metrics: deps.Metrics,
		group:   flight.NewGroup[bool](),
	}
}

// Probe reports whether the backend answered the liveness request. The first
// call issues it; calls made while it is pending share it; later calls return
// the memoized answer. If ctx ends first, Probe stops waiting and returns false
// while the shared probe keeps running for the other callers.
func (p *Prober) Probe(ctx context.Context) bool {
	if s := p.state.Load(); s != nil {
		return s.awake
	}
	awake, err, shared := p.group.Do(ctx, wakeKey, p.issue)
	if err != nil {
		p.logDebug("Stopped waiting for liveness probe", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}
	if shared {
		p.logDebug("Joined in-flight liveness probe", map[string]interface{}{"awake": awake})
	}
	return awake
}

// Awake returns the memoized result without any I/O.
// resolved is false until a probe has completed.
func (p *Prober) Awake() (awake, resolved bool) {
	s := p.state.Load()
	if s == nil {
		return false, false
	}
	return s.awake, true
}

// MarkAwake records that the backend answered some other request.
func (p *Prober) MarkAwake() {
	if s := p.state.Load(); s != nil && s.awake {
		return
	}
	p.state.Store(&wakeState{awake: true, resolved: time.Now()})
	if p.metrics != nil {
		p.metrics.SetAwake(true)
	}
}

// Reset forgets the memoized result so the next Probe issues a new request.
// A probe already in flight is not affected and still records its answer.
func (p *Prober) Reset() {
	p.state.Store(nil)
}

func (p *Prober) issue() (bool, error) {
	if s := p.state.Load(); s != nil {
		return s.awake, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.Timeout)
	defer cancel()

	start := time.Now()
	state := &wakeState{}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.URL, nil)
	if err == nil {
		if p.cfg.UserAgent != "" {
			req.Header.Set("User-Agent", p.cfg.UserAgent)
		}
		var resp interfaces.Response
		resp, err = p.client.Do(req)
		if err == nil {
			// any status proves the backend is reachable
			state.awake = true
			state.status = resp.StatusCode()
			body := resp.Body()
			_, _ = io.Copy(io.Discard, body)
			_ = body.Close()
		}
	}
	duration := time.Since(start)
	state.resolved = time.Now()
	p.state.Store(state)

	if p.metrics != nil {
		p.metrics.ObserveProbe(state.awake, duration)
	}
	if p.logger != nil {
		fields := map[string]interface{}{
			"url":         p.cfg.URL,
			"awake":       state.awake,
			"status":      state.status,
			"duration_ms": duration.Milliseconds(),
		}
		if err != nil {
			fields["error"] = err.Error()
			p.logger.Warn("Liveness probe got no response", fields)
		} else {
			p.logger.Info("Liveness probe answered", fields)
		}
	}
	return state.awake, nil
}

func (p *Prober) logDebug(msg string, fields map[string]interface{}) {
	if p.logger != nil {
		p.logger.Debug(msg, fields)
	}
}
