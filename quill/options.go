// ABOUTME: Configuration options for the Quill API client
// ABOUTME: Provides functional options for dependencies and per-call options for retry safety

package quill

import (
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/richochetclementine1315/Quill/core/catalog"
	"github.com/richochetclementine1315/Quill/core/interfaces"
	"github.com/richochetclementine1315/Quill/pkg/config"
	"github.com/richochetclementine1315/Quill/pkg/featureflags"
)

// Option is a functional option for configuring the client
type Option func(*Options) error

// Options holds everything the client is built from. Nil dependencies are
// replaced with defaults by NewClient.
type Options struct {
	Settings    *config.Config
	HTTPClient  interfaces.HTTPClient
	Credentials interfaces.Credentials
	Cache       interfaces.Cache
	Logger      interfaces.Logger
	Metrics     interfaces.Metrics
	Tracer      trace.Tracer
	Flags       featureflags.Manager
	Catalog     *catalog.Catalog

	// cacheFromSettings builds the cache described by Settings.Cache
	cacheFromSettings bool
}

// WithConfig sets the endpoint, timeout and retry settings
func WithConfig(cfg *config.Config) Option {
	return func(o *Options) error {
		if cfg == nil {
			return newConfigError("config cannot be nil")
		}
		if err := cfg.Validate(); err != nil {
			return newConfigError(err.Error())
		}
		o.Settings = cfg
		return nil
	}
}

// WithHTTPClient sets a custom transport
func WithHTTPClient(client interfaces.HTTPClient) Option {
	return func(o *Options) error {
		o.HTTPClient = client
		return nil
	}
}

// WithCredentials sets how the session is attached to requests
func WithCredentials(creds interfaces.Credentials) Option {
	return func(o *Options) error {
		o.Credentials = creds
		return nil
	}
}

// WithCache sets the cache used for stale reads
func WithCache(cache interfaces.Cache) Option {
	return func(o *Options) error {
		o.Cache = cache
		return nil
	}
}

// WithCacheFromConfig builds the cache selected by the CACHE_TYPE settings.
// The client owns that cache and closes it on Close.
func WithCacheFromConfig() Option {
	return func(o *Options) error {
		o.cacheFromSettings = true
		return nil
	}
}

// WithLogger sets a custom logger
func WithLogger(logger interfaces.Logger) Option {
	return func(o *Options) error {
		o.Logger = logger
		return nil
	}
}

// WithQuietMode suppresses all log output
func WithQuietMode() Option {
	return func(o *Options) error {
		o.Logger = QuietLogger()
		return nil
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(metrics interfaces.Metrics) Option {
	return func(o *Options) error {
		o.Metrics = metrics
		return nil
	}
}

// WithTracer sets the tracer used for per-call spans
func WithTracer(tracer trace.Tracer) Option {
	return func(o *Options) error {
		o.Tracer = tracer
		return nil
	}
}

// WithFlags sets the feature flag manager
func WithFlags(flags featureflags.Manager) Option {
	return func(o *Options) error {
		o.Flags = flags
		return nil
	}
}

// WithCatalog replaces the endpoint catalog, e.g. for a backend mounted elsewhere
func WithCatalog(cat *catalog.Catalog) Option {
	return func(o *Options) error {
		if cat == nil {
			return newConfigError("catalog cannot be nil")
		}
		o.Catalog = cat
		return nil
	}
}

// CallOption adjusts a single call
type CallOption func(*callOptions)

// ResultInfo reports how a call was answered
type ResultInfo struct {
	Status   int
	Attempts int

	// Stale is set when the data came from the cache while the backend was unavailable
	Stale bool
}

type callOptions struct {
	idempotencyKey string
	info           *ResultInfo
}

// WithIdempotencyKey sends key so the backend can deduplicate, which lets
// create and upload calls be retried like reads.
func WithIdempotencyKey(key string) CallOption {
	return func(o *callOptions) {
		o.idempotencyKey = key
	}
}

// WithNewIdempotencyKey generates a random idempotency key for the call
func WithNewIdempotencyKey() CallOption {
	return WithIdempotencyKey(uuid.NewString())
}

// WithResultInfo fills info once the call succeeds
func WithResultInfo(info *ResultInfo) CallOption {
	return func(o *callOptions) {
		o.info = info
	}
}

func applyCallOptions(opts []CallOption) callOptions {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
