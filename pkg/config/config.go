// ABOUTME: Configuration management for the client and gateway with environment variable support
// ABOUTME: Defines configuration structures for the API client, gateway server, cache and logging

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// API contains backend access configuration
	API APIConfig

	// Server contains gateway HTTP server configuration
	Server ServerConfig

	// Cache contains stale-read cache configuration
	Cache CacheConfig

	// Log contains logger configuration
	Log LogConfig
}

// APIConfig holds backend access configuration
type APIConfig struct {
	// BaseURL is prefixed to every endpoint path
	BaseURL string

	// HealthURL is the liveness URL; defaults to BaseURL + "/health"
	HealthURL string

	// RequestTimeout bounds each attempt
	RequestTimeout time.Duration

	// ProbeTimeout bounds the liveness probe
	ProbeTimeout time.Duration

	// MaxRetries is the number of retries after the first attempt
	MaxRetries int

	// BackoffBase is the delay before the first retry
	BackoffBase time.Duration

	// BackoffCap caps every retry delay
	BackoffCap time.Duration

	// BackoffJitter is the randomization factor in [0,1)
	BackoffJitter float64

	// UserAgent is sent with every request
	UserAgent string

	// FetchWorkers bounds concurrent calls in batch operations
	FetchWorkers int
}

// ServerConfig holds gateway HTTP server configuration
type ServerConfig struct {
	// Port is the HTTP server port
	Port string

	// AllowedOrigins lists the browser origins allowed by CORS
	AllowedOrigins []string

	// RateLimit is the sustained requests per second allowed per client
	RateLimit float64

	// RateBurst is the burst allowed per client
	RateBurst int
}

// CacheConfig holds cache backend configuration
type CacheConfig struct {
	// Type specifies the cache backend (none/memory/redis/sqlite)
	Type string

	// TTL is how long reads are kept for the stale fallback
	TTL time.Duration

	// Redis contains Redis-specific configuration
	Redis RedisConfig

	// SQLite contains SQLite-specific configuration
	SQLite SQLiteConfig
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// Address is the Redis server address
	Address string

	// Password is the Redis authentication password
	Password string

	// DB is the Redis database number
	DB int
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	// Path is the database file
	Path string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
	File   string
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	baseURL := "http://localhost:8080/api"
	return &Config{
		API: APIConfig{
			BaseURL:        baseURL,
			HealthURL:      baseURL + "/health",
			RequestTimeout: 75 * time.Second,
			ProbeTimeout:   75 * time.Second,
			MaxRetries:     3,
			BackoffBase:    1000 * time.Millisecond,
			BackoffCap:     10000 * time.Millisecond,
			UserAgent:      "QuillClient/1.0",
			FetchWorkers:   4,
		},
		Server: ServerConfig{
			Port:           "8000",
			AllowedOrigins: []string{"http://localhost:5173"},
			RateLimit:      10,
			RateBurst:      20,
		},
		Cache: CacheConfig{
			Type: "memory",
			TTL:  24 * time.Hour,
			Redis: RedisConfig{
				Address: "localhost:6379",
			},
			SQLite: SQLiteConfig{
				Path: "quill-cache.db",
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	d := Default()

	baseURL := strings.TrimRight(getEnvOrDefault("QUILL_API_BASE_URL", d.API.BaseURL), "/")
	cfg := &Config{
		API: APIConfig{
			BaseURL:        baseURL,
			HealthURL:      getEnvOrDefault("QUILL_HEALTH_URL", baseURL+"/health"),
			RequestTimeout: getEnvAsDurationOrDefault("QUILL_REQUEST_TIMEOUT", d.API.RequestTimeout),
			ProbeTimeout:   getEnvAsDurationOrDefault("QUILL_PROBE_TIMEOUT", d.API.ProbeTimeout),
			MaxRetries:     getEnvAsIntOrDefault("QUILL_MAX_RETRIES", d.API.MaxRetries),
			BackoffBase:    getEnvAsDurationOrDefault("QUILL_BACKOFF_BASE", d.API.BackoffBase),
			BackoffCap:     getEnvAsDurationOrDefault("QUILL_BACKOFF_CAP", d.API.BackoffCap),
			BackoffJitter:  getEnvAsFloatOrDefault("QUILL_BACKOFF_JITTER", d.API.BackoffJitter),
			UserAgent:      getEnvOrDefault("QUILL_USER_AGENT", d.API.UserAgent),
			FetchWorkers:   getEnvAsIntOrDefault("QUILL_FETCH_WORKERS", d.API.FetchWorkers),
		},
		Server: ServerConfig{
			Port:           getEnvOrDefault("PORT", d.Server.Port),
			AllowedOrigins: getEnvAsListOrDefault("QUILL_ALLOWED_ORIGINS", d.Server.AllowedOrigins),
			RateLimit:      getEnvAsFloatOrDefault("QUILL_RATE_LIMIT", d.Server.RateLimit),
			RateBurst:      getEnvAsIntOrDefault("QUILL_RATE_BURST", d.Server.RateBurst),
		},
		Cache: CacheConfig{
			Type: strings.ToLower(getEnvOrDefault("CACHE_TYPE", d.Cache.Type)),
			TTL:  getEnvAsDurationOrDefault("CACHE_TTL", d.Cache.TTL),
			Redis: RedisConfig{
				Address:  getEnvOrDefault("REDIS_ADDRESS", d.Cache.Redis.Address),
				Password: getEnvOrDefault("REDIS_PASSWORD", ""),
				DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
			},
			SQLite: SQLiteConfig{
				Path: getEnvOrDefault("SQLITE_PATH", d.Cache.SQLite.Path),
			},
		},
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", d.Log.Level),
			Format: getEnvOrDefault("LOG_FORMAT", d.Log.Format),
			File:   getEnvOrDefault("LOG_FILE", ""),
		},
	}

	return cfg, nil
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the environment variable as int or a default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloatOrDefault returns the environment variable as float64 or a default
func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvAsDurationOrDefault accepts a Go duration ("90s") or integer milliseconds ("90000")
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return defaultValue
}

// getEnvAsListOrDefault splits a comma separated variable
func getEnvAsListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var list []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validateURL("base URL", c.API.BaseURL); err != nil {
		return err
	}
	if err := validateURL("health URL", c.API.HealthURL); err != nil {
		return err
	}

	if c.API.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	if c.API.ProbeTimeout <= 0 {
		return errors.New("probe timeout must be positive")
	}
	if c.API.MaxRetries < 0 {
		return errors.New("max retries cannot be negative")
	}
	if c.API.BackoffBase <= 0 {
		return errors.New("backoff base must be positive")
	}
	if c.API.BackoffCap < c.API.BackoffBase {
		return errors.New("backoff cap cannot be below the backoff base")
	}
	if c.API.BackoffJitter < 0 || c.API.BackoffJitter >= 1 {
		return errors.New("backoff jitter must be in [0, 1)")
	}
	if c.API.FetchWorkers < 1 {
		return errors.New("fetch workers must be at least 1")
	}

	if c.Server.Port == "" {
		return errors.New("port cannot be empty")
	}
	if c.Server.RateLimit <= 0 || c.Server.RateBurst < 1 {
		return errors.New("rate limit and burst must be positive")
	}

	switch c.Cache.Type {
	case "none", "memory":
	case "redis":
		if c.Cache.Redis.Address == "" {
			return errors.New("redis address cannot be empty when using redis cache")
		}
	case "sqlite":
		if c.Cache.SQLite.Path == "" {
			return errors.New("sqlite path cannot be empty when using sqlite cache")
		}
	default:
		return errors.New("cache type must be 'none', 'memory', 'redis' or 'sqlite'")
	}

	return nil
}

func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http or https URL", name)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", name)
	}
	return nil
}
