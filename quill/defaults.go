// ABOUTME: Default implementations for client dependencies
// ABOUTME: Provides factory functions for the transport, logger and stale-read caches

package quill

import (
	"fmt"
	"time"

	"github.com/richochetclementine1315/Quill/core/interfaces"
	"github.com/richochetclementine1315/Quill/infrastructure/cache/memory"
	"github.com/richochetclementine1315/Quill/infrastructure/cache/redis"
	"github.com/richochetclementine1315/Quill/infrastructure/cache/sqlite"
	"github.com/richochetclementine1315/Quill/infrastructure/credentials"
	httpInfra "github.com/richochetclementine1315/Quill/infrastructure/http/standard"
	"github.com/richochetclementine1315/Quill/infrastructure/logger/structured"
	"github.com/richochetclementine1315/Quill/pkg/config"
)

// transportGrace lets the dispatcher's per-attempt deadline fire before the transport's own
const transportGrace = 5 * time.Second

// DefaultHTTPClient creates the standard transport for the given settings
func DefaultHTTPClient(cfg *config.Config, logger interfaces.Logger) interfaces.HTTPClient {
	timeout := cfg.API.RequestTimeout
	if cfg.API.ProbeTimeout > timeout {
		timeout = cfg.API.ProbeTimeout
	}
	client := httpInfra.NewStandardHTTPClient(timeout + transportGrace).WithUserAgent(cfg.API.UserAgent)
	if logger != nil {
		client = client.WithLogging(logger)
	}
	return client
}

// DefaultCredentials creates a cookie jar that keeps the session across calls
func DefaultCredentials() (interfaces.Credentials, error) {
	return credentials.NewJar()
}

// DefaultLogger creates a logrus logger from the log settings
func DefaultLogger(cfg config.LogConfig) interfaces.Logger {
	return structured.New(structured.Options{
		Level:  cfg.Level,
		Format: cfg.Format,
		File:   cfg.File,
	})
}

// QuietLogger creates a logger that discards all output
func QuietLogger() interfaces.Logger {
	return structured.Quiet()
}

// NewCache creates the cache selected by cfg.Type. "none" returns a nil cache.
func NewCache(cfg config.CacheConfig) (interfaces.Cache, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "memory":
		return memory.NewMemoryCache(), nil
	case "redis":
		cache, err := redis.NewRedisCache(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return cache, nil
	case "sqlite":
		cache, err := sqlite.NewSQLiteCache(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite cache: %w", err)
		}
		return cache, nil
	default:
		return nil, newConfigError(fmt.Sprintf("invalid cache type %q", cfg.Type))
	}
}
