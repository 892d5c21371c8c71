package core

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the storefront client.
// It supports three-layer configuration priority:
//  1. Default values (lowest priority)
//  2. Environment variables (medium priority)
//  3. Functional options (highest priority)
//
// Example usage:
//
//	cfg, err := core.NewConfig(
//	    core.WithBaseURL("https://shop.example.com/api"),
//	    core.WithTimeout(10*time.Second),
//	    core.WithTokenFile("/var/lib/storefront/token"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
type Config struct {
	// BaseURL is the root of the backend REST surface. All request
	// paths are resolved against it.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds every HTTP round trip.
	Timeout time.Duration `yaml:"timeout"`

	// UserAgent is sent on every request.
	UserAgent string `yaml:"user_agent"`

	// Storage selects where the session token is persisted across
	// process restarts.
	Storage StorageConfig `yaml:"storage"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`

	// Telemetry configuration
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// StorageConfig selects the token persistence backend. RedisURL takes
// precedence over TokenFile; with neither set the token lives only in
// memory and does not survive a restart.
type StorageConfig struct {
	RedisURL  string `yaml:"redis_url"`
	TokenFile string `yaml:"token_file"`
	// Key under which the token is stored. Fixed default shared by
	// every process using the same backend.
	Key string `yaml:"key"`
}

// LoggingConfig controls the built-in structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // DEBUG, INFO, WARN, ERROR
	Format string `yaml:"format"` // text or json
}

// TelemetryConfig controls request tracing. Spans are emitted against
// the process-global OpenTelemetry tracer provider; exporter setup is
// the embedding application's concern.
type TelemetryConfig struct {
	TracingEnabled bool `yaml:"tracing_enabled"`
	// InstrumentHTTP wraps the HTTP transport with otelhttp so each
	// round trip carries client spans and propagation headers.
	InstrumentHTTP bool `yaml:"instrument_http"`
}

// Option configures a Config. Options are applied in order after
// defaults and environment variables.
type Option func(*Config) error

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Timeout:   30 * time.Second,
		UserAgent: "storefront-go/" + Version,
		Storage: StorageConfig{
			Key: "storefront:auth:token",
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "",
		},
		Telemetry: TelemetryConfig{
			TracingEnabled: true,
		},
	}
}

// LoadFromEnv overlays environment variables onto the config.
func (c *Config) LoadFromEnv() error {
	if v := getEnv("SHOPFRONT_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := getEnv("SHOPFRONT_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SHOPFRONT_HTTP_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := getEnv("SHOPFRONT_REDIS_URL", "REDIS_URL"); v != "" {
		c.Storage.RedisURL = v
	}
	if v := getEnv("SHOPFRONT_TOKEN_FILE"); v != "" {
		c.Storage.TokenFile = v
	}
	if v := getEnv("SHOPFRONT_STORAGE_KEY"); v != "" {
		c.Storage.Key = v
	}
	if v := getEnv("SHOPFRONT_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToUpper(v)
	}
	if v := getEnv("SHOPFRONT_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := getEnv("SHOPFRONT_TRACING_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SHOPFRONT_TRACING_ENABLED: %w", err)
		}
		c.Telemetry.TracingEnabled = enabled
	}
	return nil
}

// fileConfig is the YAML document shape. Durations are strings in the
// file ("30s", "1m") and parsed explicitly.
type fileConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   string        `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	Storage   StorageConfig `yaml:"storage"`
	Logging   LoggingConfig `yaml:"logging"`
	Telemetry struct {
		TracingEnabled *bool `yaml:"tracing_enabled"`
		InstrumentHTTP *bool `yaml:"instrument_http"`
	} `yaml:"telemetry"`
}

// LoadFromFile overlays a YAML config file onto the config. Only keys
// present in the file override the current values.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.BaseURL != "" {
		c.BaseURL = strings.TrimRight(fc.BaseURL, "/")
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("config file %s: timeout: %w", path, err)
		}
		c.Timeout = d
	}
	if fc.UserAgent != "" {
		c.UserAgent = fc.UserAgent
	}
	if fc.Storage.RedisURL != "" {
		c.Storage.RedisURL = fc.Storage.RedisURL
	}
	if fc.Storage.TokenFile != "" {
		c.Storage.TokenFile = fc.Storage.TokenFile
	}
	if fc.Storage.Key != "" {
		c.Storage.Key = fc.Storage.Key
	}
	if fc.Logging.Level != "" {
		c.Logging.Level = strings.ToUpper(fc.Logging.Level)
	}
	if fc.Logging.Format != "" {
		c.Logging.Format = fc.Logging.Format
	}
	if fc.Telemetry.TracingEnabled != nil {
		c.Telemetry.TracingEnabled = *fc.Telemetry.TracingEnabled
	}
	if fc.Telemetry.InstrumentHTTP != nil {
		c.Telemetry.InstrumentHTTP = *fc.Telemetry.InstrumentHTTP
	}
	return nil
}

// Validate checks the final configuration for consistency.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL", ErrMissingConfiguration)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: base URL %q is not an absolute URL", ErrInvalidConfiguration, c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfiguration)
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("%w: storage key", ErrMissingConfiguration)
	}
	switch strings.ToUpper(c.Logging.Level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfiguration, c.Logging.Level)
	}
	return nil
}

// NewConfig builds a Config from defaults, environment and options.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load env config: %w", err)
	}

	// Apply functional options (these override env vars)
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// WithBaseURL sets the backend base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Config) error {
		c.BaseURL = strings.TrimRight(baseURL, "/")
		return nil
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout <= 0 {
			return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfiguration)
		}
		c.Timeout = timeout
		return nil
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Config) error {
		c.UserAgent = ua
		return nil
	}
}

// WithRedisURL persists the session token in Redis.
func WithRedisURL(redisURL string) Option {
	return func(c *Config) error {
		c.Storage.RedisURL = redisURL
		return nil
	}
}

// WithTokenFile persists the session token in a local file.
func WithTokenFile(path string) Option {
	return func(c *Config) error {
		c.Storage.TokenFile = path
		return nil
	}
}

// WithStorageKey overrides the fixed storage key for the token.
func WithStorageKey(key string) Option {
	return func(c *Config) error {
		if key == "" {
			return fmt.Errorf("%w: storage key", ErrMissingConfiguration)
		}
		c.Storage.Key = key
		return nil
	}
}

// WithLogLevel sets the minimum level for the built-in logger.
func WithLogLevel(level string) Option {
	return func(c *Config) error {
		c.Logging.Level = strings.ToUpper(level)
		return nil
	}
}

// WithLogFormat forces text or json log output.
func WithLogFormat(format string) Option {
	return func(c *Config) error {
		c.Logging.Format = format
		return nil
	}
}

// WithTracing toggles per-request span creation.
func WithTracing(enabled bool) Option {
	return func(c *Config) error {
		c.Telemetry.TracingEnabled = enabled
		return nil
	}
}

// WithInstrumentedHTTP wraps the HTTP transport with otelhttp.
func WithInstrumentedHTTP(enabled bool) Option {
	return func(c *Config) error {
		c.Telemetry.InstrumentHTTP = enabled
		return nil
	}
}

// WithConfigFile overlays a YAML file. Position matters: options after
// this one override values from the file.
func WithConfigFile(path string) Option {
	return func(c *Config) error {
		return c.LoadFromFile(path)
	}
}

// getEnv returns the first non-empty value among the given variables.
func getEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
