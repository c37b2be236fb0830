package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/qrpreview/secret"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid")

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Cache     CacheConfig     `yaml:"cache"`
	Preview   PreviewConfig   `yaml:"preview"`
	Auth      AuthConfig      `yaml:"auth"`
	Encoder   EncoderConfig   `yaml:"encoder"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Observe   ObserveConfig   `yaml:"observe"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// CacheConfig configures the preview store. TTL is also the advertised
// Cache-Control max-age.
type CacheConfig struct {
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	MaxBytes   int64         `yaml:"max_bytes"`
	Namespace  string        `yaml:"namespace"`
}

// PreviewConfig configures request limits and option defaults.
type PreviewConfig struct {
	MaxContentBytes int `yaml:"max_content_bytes"`
	MinWidth        int `yaml:"min_width"`
	MaxWidth        int `yaml:"max_width"`
	MaxMargin       int `yaml:"max_margin"`

	DefaultECL    string `yaml:"default_ecl"`
	DefaultMargin int    `yaml:"default_margin"`
	DefaultWidth  int    `yaml:"default_width"`
	DefaultDark   string `yaml:"default_dark"`
	DefaultLight  string `yaml:"default_light"`
	DefaultFormat string `yaml:"default_format"`
}

// AuthConfig configures integrity tokens and admin keys.
type AuthConfig struct {
	// Method is none, hmac, jwt or any.
	Method     string        `yaml:"method"`
	Secret     string        `yaml:"secret"`
	TokenBytes int           `yaml:"token_bytes"`
	Issuer     string        `yaml:"issuer"`
	TTL        time.Duration `yaml:"ttl"`
	Leeway     time.Duration `yaml:"leeway"`
	AdminKeys  []AdminKey    `yaml:"admin_keys"`
}

// AdminKey is an operator API key for the stats and purge endpoints.
type AdminKey struct {
	ID        string    `yaml:"id"`
	Key       string    `yaml:"key"`
	Principal string    `yaml:"principal"`
	ExpiresAt time.Time `yaml:"expires_at"`
}

// EncoderConfig bounds encoder work.
type EncoderConfig struct {
	MaxConcurrent  int                  `yaml:"max_concurrent"`
	MaxWait        time.Duration        `yaml:"max_wait"`
	Timeout        time.Duration        `yaml:"timeout"`
	PNGDataURL     bool                 `yaml:"png_data_url"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`

	// MaxRendersPerSecond caps encoder calls process-wide. Cache hits are
	// not counted. Zero disables the cap.
	MaxRendersPerSecond float64 `yaml:"max_renders_per_second"`
	RenderBurst         int     `yaml:"render_burst"`
}

// CircuitBreakerConfig configures the encoder circuit breaker.
type CircuitBreakerConfig struct {
	Enabled      bool          `yaml:"enabled"`
	MaxFailures  int           `yaml:"max_failures"`
	ResetTimeout time.Duration `yaml:"reset_timeout"`
}

// RateLimitConfig configures per-client limiting of untokened requests.
type RateLimitConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Rate            float64       `yaml:"rate"`
	Burst           int           `yaml:"burst"`
	IdleTTL         time.Duration `yaml:"idle_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// ObserveConfig configures telemetry.
type ObserveConfig struct {
	ServiceName string        `yaml:"service_name"`
	Version     string        `yaml:"version"`
	Tracing     TracingConfig `yaml:"tracing"`
	Metrics     MetricsConfig `yaml:"metrics"`
	Logging     LoggingConfig `yaml:"logging"`
}

// TracingConfig configures tracing.
type TracingConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Exporter  string  `yaml:"exporter"`
	Endpoint  string  `yaml:"endpoint"`
	SamplePct float64 `yaml:"sample_pct"`
}

// MetricsConfig configures metrics.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
	Endpoint string `yaml:"endpoint"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
}

// Default returns the configuration used for keys absent from the file.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Cache: CacheConfig{
			TTL:        time.Hour,
			MaxEntries: 1024,
			MaxBytes:   64 << 20,
			Namespace:  "qrpreview:v1",
		},
		Preview: PreviewConfig{
			MaxContentBytes: 2953,
			MinWidth:        32,
			MaxWidth:        2048,
			MaxMargin:       64,
			DefaultECL:      "M",
			DefaultMargin:   4,
			DefaultWidth:    256,
			DefaultDark:     "000000",
			DefaultLight:    "ffffff",
			DefaultFormat:   "svg",
		},
		Auth: AuthConfig{
			Method: "none",
			Leeway: 30 * time.Second,
		},
		Encoder: EncoderConfig{
			MaxConcurrent: 8,
			MaxWait:       2 * time.Second,
			Timeout:       5 * time.Second,
			CircuitBreaker: CircuitBreakerConfig{
				MaxFailures:  5,
				ResetTimeout: 30 * time.Second,
			},
		},
		RateLimit: RateLimitConfig{
			Rate:            10,
			Burst:           20,
			IdleTTL:         5 * time.Minute,
			CleanupInterval: time.Minute,
		},
		Observe: ObserveConfig{
			ServiceName: "qrpreview",
			Tracing:     TracingConfig{Exporter: "none", SamplePct: 1},
			Metrics:     MetricsConfig{Enabled: true, Exporter: "prometheus"},
			Logging:     LoggingConfig{Enabled: true, Level: "info"},
		},
	}
}

// Load reads and parses the file at path. An empty path returns the
// validated defaults. A nil resolver uses secret.NewDefaultResolver("").
func Load(ctx context.Context, path string, resolver *secret.Resolver) (Config, error) {
	if path == "" {
		return Parse(ctx, nil, resolver)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(ctx, data, resolver)
}

// Parse decodes YAML over Default, resolves secrets and validates.
// Unknown keys are rejected.
func Parse(ctx context.Context, data []byte, resolver *secret.Resolver) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}

	if resolver == nil {
		resolver = secret.NewDefaultResolver("")
	}
	if err := cfg.resolveSecrets(ctx, resolver); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) resolveSecrets(ctx context.Context, r *secret.Resolver) error {
	targets := []*string{&c.Server.Addr, &c.Auth.Secret, &c.Observe.Tracing.Endpoint, &c.Observe.Metrics.Endpoint}
	for i := range c.Auth.AdminKeys {
		targets = append(targets, &c.Auth.AdminKeys[i].Key)
	}
	if err := r.ResolveInPlace(ctx, targets...); err != nil {
		return fmt.Errorf("config: resolve secrets: %w", err)
	}
	return nil
}
