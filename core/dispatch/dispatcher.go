// ABOUTME: Request dispatcher is the single choke point every API call passes through
// ABOUTME: Resolves the endpoint, attaches credentials, bounds each attempt and applies the retry policy

package dispatch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/richochetclementine1315/Quill/core/catalog"
	qerrors "github.com/richochetclementine1315/Quill/core/errors"
	"github.com/richochetclementine1315/Quill/core/interfaces"
	"github.com/richochetclementine1315/Quill/core/retry"
)

const (
	// DefaultRequestTimeout bounds a single attempt and survives a cold start
	DefaultRequestTimeout = 75 * time.Second

	// DefaultStaleTTL is how long a read stays available as a stale fallback
	DefaultStaleTTL = 24 * time.Hour

	// IdempotencyKeyHeader carries the caller supplied deduplication key
	IdempotencyKeyHeader = "Idempotency-Key"

	requestIDHeader = "X-Request-ID"
	staleKeyPrefix  = "quill:stale:"
	tracerName      = "github.com/richochetclementine1315/Quill/core/dispatch"
)

// WakeProber is the part of the health prober the dispatcher relies on
type WakeProber interface {
	Probe(ctx context.Context) bool
	Awake() (awake, resolved bool)
	MarkAwake()
}

// Config holds dispatcher configuration
type Config struct {
	// BaseURL is prefixed to every endpoint path, e.g. http://localhost:8080/api
	BaseURL string

	// RequestTimeout bounds each attempt
	RequestTimeout time.Duration

	// Policy is the retry policy applied to transient failures
	Policy retry.Policy

	// ProbeBeforeFirstCall waits for the liveness probe before the first call
	ProbeBeforeFirstCall bool

	// StaleReads answers cacheable reads from the cache when the backend stays unavailable
	StaleReads bool

	// StaleTTL is the cache lifetime of stored reads
	StaleTTL time.Duration
}

// Dispatcher sends catalog operations to the backend
type Dispatcher struct {
	cfg     Config
	catalog *catalog.Catalog
	prober  WakeProber
	client  interfaces.HTTPClient
	creds   interfaces.Credentials
	cache   interfaces.Cache
	logger  interfaces.Logger
	metrics interfaces.Metrics
	tracer  trace.Tracer
}

// NewDispatcher creates a dispatcher. prober may be nil, in which case no
// liveness probe is issued.
func NewDispatcher(cfg Config, cat *catalog.Catalog, prober WakeProber, deps interfaces.Dependencies) *Dispatcher {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.StaleTTL <= 0 {
		cfg.StaleTTL = DefaultStaleTTL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cat == nil {
		cat = catalog.Default()
	}

	d := &Dispatcher{
		cfg:     cfg,
		catalog: cat,
		prober:  prober,
		client:  deps.HTTPClient,
		creds:   deps.Credentials,
		cache:   deps.Cache,
		logger:  deps.Logger,
		metrics: deps.Metrics,
		tracer:  deps.Tracer,
	}
	if d.logger == nil {
		d.logger = nopLogger{}
	}
	if d.tracer == nil {
		d.tracer = noop.NewTracerProvider().Tracer(tracerName)
	}
	return d
}

// Send performs the named operation, retrying transient failures while the
// policy allows. Every error returned is a *errors.DispatchError.
func (d *Dispatcher) Send(ctx context.Context, name string, params Params) (*Result, error) {
	desc, err := d.catalog.Resolve(name)
	if err != nil {
		d.logger.Error("Unknown endpoint requested", map[string]interface{}{"endpoint": name})
		return nil, err
	}

	enc, err := encode(desc, params)
	if err != nil {
		return nil, err
	}

	ctx, span := d.tracer.Start(ctx, "quill."+desc.Name, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", desc.Method),
		attribute.String("quill.endpoint", desc.Name),
		attribute.Bool("quill.idempotent", desc.Idempotent),
	)

	d.wake(ctx)

	result, err := d.run(ctx, desc, enc, params.IdempotencyKey)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(qerrors.KindOf(err)))
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("http.status_code", result.Status),
		attribute.Int("quill.attempts", result.Attempts),
		attribute.Bool("quill.stale", result.Stale),
	)
	return result, nil
}

func (d *Dispatcher) wake(ctx context.Context) {
	if d.prober == nil || !d.cfg.ProbeBeforeFirstCall {
		return
	}
	if _, resolved := d.prober.Awake(); resolved {
		return
	}
	awake := d.prober.Probe(ctx)
	d.logger.Debug("Backend wake check finished", map[string]interface{}{"awake": awake})
}

func (d *Dispatcher) run(ctx context.Context, desc catalog.Descriptor, enc *encodedRequest, idempotencyKey string) (*Result, error) {
	url := d.cfg.BaseURL + enc.path
	retryable := desc.Idempotent || idempotencyKey != ""

	for attempt := 1; ; attempt++ {
		status, body, contentType, outcome := d.attempt(ctx, desc, url, enc, idempotencyKey, attempt)

		if ctx.Err() != nil {
			return nil, qerrors.New(qerrors.KindCanceled, desc.Name, ctx.Err().Error()).
				WithAttempts(attempt).
				WithCause(ctx.Err())
		}

		if outcome.Kind == retry.Success {
			if d.prober != nil {
				d.prober.MarkAwake()
			}
			d.storeStale(ctx, desc, url, body)
			return &Result{Endpoint: desc.Name, Status: status, Body: body, Attempts: attempt}, nil
		}

		decision := d.cfg.Policy.Decide(outcome, attempt, retryable)
		if !decision.Retry {
			failure := d.failure(desc, outcome, contentType, body, attempt)
			d.logger.Warn("Request failed", map[string]interface{}{
				"endpoint": desc.Name,
				"kind":     string(outcome.ErrKind),
				"status":   status,
				"attempts": attempt,
				"reason":   decision.Reason,
			})
			if outcome.Kind == retry.Transient {
				if stale := d.loadStale(ctx, desc, url, attempt); stale != nil {
					return stale, nil
				}
			}
			return nil, failure
		}

		d.logger.Warn("Retrying after transient failure", map[string]interface{}{
			"endpoint": desc.Name,
			"kind":     string(outcome.ErrKind),
			"status":   status,
			"attempt":  attempt,
			"delay_ms": decision.Delay.Milliseconds(),
		})
		if d.metrics != nil {
			d.metrics.ObserveRetry(desc.Name, attempt, decision.Delay)
		}

		if err := sleep(ctx, decision.Delay); err != nil {
			return nil, qerrors.New(qerrors.KindCanceled, desc.Name, err.Error()).
				WithAttempts(attempt).
				WithCause(err)
		}
	}
}

// attempt issues one request bounded by the per-attempt timeout
func (d *Dispatcher) attempt(ctx context.Context, desc catalog.Descriptor, url string, enc *encodedRequest, idempotencyKey string, n int) (int, []byte, string, retry.Outcome) {
	attemptCtx, cancel := context.WithTimeout(ctx, d.cfg.RequestTimeout)
	defer cancel()

	start := time.Now()
	status, body, contentType, err := d.exchange(attemptCtx, ctx, desc, url, enc, idempotencyKey)
	duration := time.Since(start)

	timedOut := errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil
	outcome := retry.Classify(status, err, timedOut)
	var buildErr *buildError
	if errors.As(err, &buildErr) {
		outcome = retry.Outcome{Kind: retry.Permanent, ErrKind: qerrors.KindInvalidRequest, Err: buildErr}
	}

	if d.metrics != nil && ctx.Err() == nil {
		d.metrics.ObserveAttempt(desc.Name, outcome.Label(), duration)
	}
	fields := map[string]interface{}{
		"endpoint":    desc.Name,
		"method":      desc.Method,
		"attempt":     n,
		"status":      status,
		"outcome":     outcome.Label(),
		"duration_ms": duration.Milliseconds(),
	}
	if id := RequestID(ctx); id != "" {
		fields["request_id"] = id
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	d.logger.Debug("Request attempt finished", fields)

	return status, body, contentType, outcome
}

func (d *Dispatcher) exchange(attemptCtx, callCtx context.Context, desc catalog.Descriptor, url string, enc *encodedRequest, idempotencyKey string) (int, []byte, string, error) {
	var reader io.Reader
	if enc.body != nil {
		reader = bytes.NewReader(enc.body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, desc.Method, url, reader)
	if err != nil {
		return 0, nil, "", &buildError{op: "build request", err: err}
	}
	req.Header.Set("Accept", "application/json")
	if enc.contentType != "" {
		req.Header.Set("Content-Type", enc.contentType)
	}
	if idempotencyKey != "" {
		req.Header.Set(IdempotencyKeyHeader, idempotencyKey)
	}
	if id := RequestID(callCtx); id != "" {
		req.Header.Set(requestIDHeader, id)
	}
	if d.creds != nil {
		if err := d.creds.Attach(callCtx, req); err != nil {
			return 0, nil, "", &buildError{op: "attach credentials", err: err}
		}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, nil, "", err
	}
	respBody := resp.Body()
	defer respBody.Close()

	if d.creds != nil {
		d.creds.Observe(callCtx, req, resp)
	}

	body, err := io.ReadAll(respBody)
	if err != nil {
		return 0, nil, "", err
	}
	return resp.StatusCode(), body, resp.Header("Content-Type"), nil
}

func (d *Dispatcher) failure(desc catalog.Descriptor, outcome retry.Outcome, contentType string, body []byte, attempts int) *qerrors.DispatchError {
	message := errorMessage(contentType, body)
	if message == "" && outcome.Err != nil {
		message = outcome.Err.Error()
	}
	if message == "" && outcome.Status != 0 {
		message = http.StatusText(outcome.Status)
	}
	return qerrors.New(outcome.ErrKind, desc.Name, message).
		WithStatus(outcome.Status).
		WithAttempts(attempts).
		WithCause(outcome.Err)
}

func (d *Dispatcher) staleEnabled(desc catalog.Descriptor) bool {
	return d.cfg.StaleReads && d.cache != nil && desc.Cacheable && desc.Method == http.MethodGet
}

func (d *Dispatcher) storeStale(ctx context.Context, desc catalog.Descriptor, url string, body []byte) {
	if !d.staleEnabled(desc) {
		return
	}
	if err := d.cache.Set(ctx, staleKeyPrefix+url, body, d.cfg.StaleTTL); err != nil {
		d.logger.Warn("Failed to store read for stale fallback", map[string]interface{}{
			"endpoint": desc.Name,
			"error":    err.Error(),
		})
	}
}

func (d *Dispatcher) loadStale(ctx context.Context, desc catalog.Descriptor, url string, attempts int) *Result {
	if !d.staleEnabled(desc) {
		return nil
	}
	body, err := d.cache.Get(ctx, staleKeyPrefix+url)
	if err != nil || body == nil {
		return nil
	}
	d.logger.Info("Serving stale read while backend is unavailable", map[string]interface{}{
		"endpoint": desc.Name,
		"attempts": attempts,
	})
	return &Result{Endpoint: desc.Name, Status: http.StatusOK, Body: body, Attempts: attempts, Stale: true}
}

// sleep waits for d or until ctx ends
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// buildError marks a request that could not be assembled; retrying cannot fix it
type buildError struct {
	op  string
	err error
}

func (e *buildError) Error() string {
	return e.op + ": " + e.err.Error()
}

func (e *buildError) Unwrap() error {
	return e.err
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Warn(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}
