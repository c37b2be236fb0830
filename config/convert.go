package config

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/jonwraymond/qrpreview/auth"
	"github.com/jonwraymond/qrpreview/cache"
	"github.com/jonwraymond/qrpreview/observe"
	"github.com/jonwraymond/qrpreview/preview"
	"github.com/jonwraymond/qrpreview/render"
	"github.com/jonwraymond/qrpreview/resilience"
)

// CachePolicy returns the store policy.
func (c *Config) CachePolicy() cache.Policy {
	return cache.Policy{
		TTL:        c.Cache.TTL,
		MaxEntries: c.Cache.MaxEntries,
		MaxBytes:   c.Cache.MaxBytes,
	}
}

// Keyer returns the cache keyer for the configured namespace.
func (c *Config) Keyer() cache.Keyer {
	return cache.NewDefaultKeyer(c.Cache.Namespace)
}

// Limits returns the preview request limits.
func (c *Config) Limits() preview.Limits {
	return preview.Limits{
		MaxContentBytes: c.Preview.MaxContentBytes,
		MinWidth:        c.Preview.MinWidth,
		MaxWidth:        c.Preview.MaxWidth,
		MaxMargin:       c.Preview.MaxMargin,
	}
}

// DefaultOptions returns the configured option defaults.
func (c *Config) DefaultOptions() preview.RenderOptions {
	return preview.NewNormalizer(preview.DefaultOptions(), c.Limits()).Normalize(preview.RawOptions{
		preview.OptECL:    c.Preview.DefaultECL,
		preview.OptMargin: strconv.Itoa(c.Preview.DefaultMargin),
		preview.OptWidth:  strconv.Itoa(c.Preview.DefaultWidth),
		preview.OptDark:   c.Preview.DefaultDark,
		preview.OptLight:  c.Preview.DefaultLight,
		preview.OptFormat: c.Preview.DefaultFormat,
	})
}

// Authenticator builds the integrity token authenticator, or nil for
// method "none".
func (c *Config) Authenticator() (auth.TokenAuthenticator, error) {
	if c.Auth.Method == "" || c.Auth.Method == "none" {
		return nil, nil
	}

	cfg := map[string]any{
		"secret":      c.Auth.Secret,
		"token_bytes": c.Auth.TokenBytes,
		"issuer":      c.Auth.Issuer,
	}
	if c.Auth.TTL > 0 {
		cfg["ttl"] = c.Auth.TTL.String()
	}
	if c.Auth.Leeway > 0 {
		cfg["leeway"] = c.Auth.Leeway.String()
	}
	return auth.DefaultRegistry.Create(c.Auth.Method, cfg)
}

// AdminAuthenticator builds the admin API key authenticator, or nil when
// no keys are configured.
func (c *Config) AdminAuthenticator() *auth.APIKeyAuthenticator {
	if len(c.Auth.AdminKeys) == 0 {
		return nil
	}

	store := auth.NewMemoryAPIKeyStore()
	for i, k := range c.Auth.AdminKeys {
		hash := auth.HashAPIKey(k.Key)
		id := k.ID
		if id == "" {
			id = "admin-" + strconv.Itoa(i)
		}
		principal := k.Principal
		if principal == "" {
			principal = id
		}
		store.Add(&auth.APIKeyInfo{
			ID:        id,
			KeyHash:   hash,
			Principal: principal,
			ExpiresAt: k.ExpiresAt,
		})
	}
	return auth.NewAPIKeyAuthenticator(auth.APIKeyConfig{}, store)
}

// Executor builds the encoder executor: optional render rate cap,
// bulkhead, optional circuit breaker and timeout. No retry is ever
// configured.
func (c *Config) Executor() *resilience.Executor {
	opts := []resilience.ExecutorOption{
		resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{
			MaxConcurrent: c.Encoder.MaxConcurrent,
			MaxWait:       c.Encoder.MaxWait,
		})),
		resilience.WithTimeout(c.Encoder.Timeout),
	}
	if cb := c.Encoder.CircuitBreaker; cb.Enabled {
		opts = append(opts, resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			MaxFailures:  cb.MaxFailures,
			ResetTimeout: cb.ResetTimeout,
		})))
	}
	if c.Encoder.MaxRendersPerSecond > 0 {
		opts = append(opts, resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Rate:        c.Encoder.MaxRendersPerSecond,
			Burst:       c.Encoder.RenderBurst,
			WaitOnLimit: true,
			MaxWait:     c.Encoder.MaxWait,
		})))
	}
	return resilience.NewExecutor(opts...)
}

// KeyedLimiter builds the per-client limiter, or nil when disabled.
func (c *Config) KeyedLimiter() *resilience.KeyedLimiter {
	if !c.RateLimit.Enabled {
		return nil
	}
	return resilience.NewKeyedLimiter(resilience.KeyedLimiterConfig{
		Rate:    c.RateLimit.Rate,
		Burst:   c.RateLimit.Burst,
		IdleTTL: c.RateLimit.IdleTTL,
	})
}

// RenderConfig returns the encoder configuration.
func (c *Config) RenderConfig() render.Config {
	return render.Config{PNGDataURL: c.Encoder.PNGDataURL}
}

// ObserveConfig returns the telemetry configuration.
func (c *Config) ObserveConfig() observe.Config {
	o := c.Observe
	return observe.Config{
		ServiceName: o.ServiceName,
		Version:     o.Version,
		Tracing: observe.TracingConfig{
			Enabled:   o.Tracing.Enabled,
			Exporter:  o.Tracing.Exporter,
			Endpoint:  o.Tracing.Endpoint,
			SamplePct: o.Tracing.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  o.Metrics.Enabled,
			Exporter: o.Metrics.Exporter,
			Endpoint: o.Metrics.Endpoint,
		},
		Logging: observe.LoggingConfig{
			Enabled: o.Logging.Enabled,
			Level:   o.Logging.Level,
		},
	}
}

// Fingerprint identifies the effective secret without revealing it, for
// startup logs.
func (c *Config) Fingerprint() string {
	if c.Auth.Secret == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(c.Auth.Secret))
	return hex.EncodeToString(sum[:4])
}
