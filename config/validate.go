package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jonwraymond/qrpreview/auth"
	"github.com/jonwraymond/qrpreview/preview"
)

// AuthMethods lists the accepted auth.method values.
var AuthMethods = []string{"none", "hmac", "jwt", "any"}

// Validate reports every problem found, joined, each wrapping ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Server.Addr == "" {
		bad("server.addr is empty")
	}
	if c.Server.ShutdownTimeout <= 0 {
		bad("server.shutdown_timeout must be positive")
	}

	if c.Cache.TTL <= 0 {
		bad("cache.ttl must be positive")
	}
	if c.Cache.MaxEntries < 0 || c.Cache.MaxBytes < 0 {
		bad("cache limits must not be negative")
	}

	p := c.Preview
	if p.MaxContentBytes <= 0 || p.MaxContentBytes > preview.MaxCapacity {
		bad("preview.max_content_bytes must be in 1..%d", preview.MaxCapacity)
	}
	if p.MinWidth <= 0 || p.MaxWidth < p.MinWidth {
		bad("preview widths must satisfy 0 < min_width <= max_width")
	}
	if p.MaxMargin < 0 || p.DefaultMargin < 0 {
		bad("preview margins must not be negative")
	}
	if _, ok := preview.ParseECL(p.DefaultECL); !ok {
		bad("preview.default_ecl %q is not one of L, M, Q, H", p.DefaultECL)
	}
	if _, ok := preview.ParseFormat(p.DefaultFormat); !ok {
		bad("preview.default_format %q is not svg or png", p.DefaultFormat)
	}
	for _, color := range []string{p.DefaultDark, p.DefaultLight} {
		if _, ok := preview.ParseColor(color); !ok {
			bad("preview color %q is not a hex triplet", color)
		}
	}

	if !slices.Contains(AuthMethods, c.Auth.Method) {
		bad("auth.method %q is not one of %v", c.Auth.Method, AuthMethods)
	} else if c.Auth.Method != "none" && len(c.Auth.Secret) < auth.MinSecretLength {
		bad("auth.secret must be at least %d bytes", auth.MinSecretLength)
	}
	for i, k := range c.Auth.AdminKeys {
		if k.Key == "" {
			bad("auth.admin_keys[%d].key is empty", i)
		}
	}

	if c.Encoder.MaxConcurrent <= 0 {
		bad("encoder.max_concurrent must be positive")
	}
	if c.Encoder.Timeout <= 0 {
		bad("encoder.timeout must be positive")
	}
	if c.Encoder.MaxRendersPerSecond < 0 || c.Encoder.RenderBurst < 0 {
		bad("encoder.max_renders_per_second and render_burst must not be negative")
	}
	if cb := c.Encoder.CircuitBreaker; cb.Enabled && (cb.MaxFailures <= 0 || cb.ResetTimeout <= 0) {
		bad("encoder.circuit_breaker needs positive max_failures and reset_timeout")
	}

	if rl := c.RateLimit; rl.Enabled && (rl.Rate <= 0 || rl.Burst <= 0) {
		bad("rate_limit needs positive rate and burst")
	}

	oc := c.ObserveConfig()
	if err := oc.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}

	return errors.Join(errs...)
}
