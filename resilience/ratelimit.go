package resilience

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig configures a token bucket.
type RateLimiterConfig struct {
	// Rate is the number of operations allowed per second.
	// Default: 100
	Rate float64

	// Burst is the maximum burst size.
	// Default: 10
	Burst int

	// WaitOnLimit waits for a token instead of returning error.
	// Default: false
	WaitOnLimit bool

	// MaxWait is the maximum time to wait for a token.
	// Default: 1 second
	MaxWait time.Duration
}

func (c RateLimiterConfig) withDefaults() RateLimiterConfig {
	if c.Rate <= 0 {
		c.Rate = 100
	}
	if c.Burst <= 0 {
		c.Burst = 10
	}
	if c.MaxWait <= 0 {
		c.MaxWait = time.Second
	}
	return c
}

// RateLimiter is a single token bucket backed by golang.org/x/time/rate.
type RateLimiter struct {
	config  RateLimiterConfig
	limiter *rate.Limiter
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	config = config.withDefaults()
	return &RateLimiter{
		config:  config,
		limiter: rate.NewLimiter(rate.Limit(config.Rate), config.Burst),
	}
}

// Allow reports whether one operation may proceed now.
func (rl *RateLimiter) Allow() bool {
	return rl.limiter.Allow()
}

// Wait blocks until a token is available, MaxWait elapses or ctx ends.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	r := rl.limiter.Reserve()
	if !r.OK() {
		return ErrRateLimitExceeded
	}

	delay := r.Delay()
	if delay == 0 {
		return nil
	}
	if delay > rl.config.MaxWait {
		r.Cancel()
		return ErrRateLimitExceeded
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

// Execute runs op once admit lets it through.
func (rl *RateLimiter) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := rl.admit(ctx); err != nil {
		return err
	}
	return op(ctx)
}

func (rl *RateLimiter) admit(ctx context.Context) error {
	if rl.config.WaitOnLimit {
		return rl.Wait(ctx)
	}
	if !rl.Allow() {
		return ErrRateLimitExceeded
	}
	return nil
}

// Tokens returns the current number of available tokens.
func (rl *RateLimiter) Tokens() float64 {
	return rl.limiter.Tokens()
}

// KeyedLimiterConfig configures per-key token buckets.
type KeyedLimiterConfig struct {
	// Rate is the number of requests allowed per second per key.
	// Default: 10
	Rate float64

	// Burst is the maximum burst size per key.
	// Default: 20
	Burst int

	// IdleTTL is how long an unused key keeps its bucket.
	// Default: 5 minutes
	IdleTTL time.Duration
}

type keyedBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter keeps one token bucket per key, typically a client address.
type KeyedLimiter struct {
	config KeyedLimiterConfig
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*keyedBucket

	rejected int64
}

// NewKeyedLimiter creates a per-key rate limiter. Call Run to evict idle keys.
func NewKeyedLimiter(config KeyedLimiterConfig) *KeyedLimiter {
	// Apply defaults
	if config.Rate <= 0 {
		config.Rate = 10
	}
	if config.Burst <= 0 {
		config.Burst = 20
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = 5 * time.Minute
	}

	return &KeyedLimiter{
		config:  config,
		now:     time.Now,
		buckets: make(map[string]*keyedBucket),
	}
}

// Allow takes a token from key's bucket. When none is available it
// returns false and how long the caller should wait before retrying,
// rounded up to whole seconds for a Retry-After header.
func (kl *KeyedLimiter) Allow(key string) (bool, time.Duration) {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	now := kl.now()
	b, ok := kl.buckets[key]
	if !ok {
		b = &keyedBucket{limiter: rate.NewLimiter(rate.Limit(kl.config.Rate), kl.config.Burst)}
		kl.buckets[key] = b
	}
	b.lastSeen = now

	if b.limiter.AllowN(now, 1) {
		return true, 0
	}

	kl.rejected++
	r := b.limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return false, retryAfter(delay)
}

func retryAfter(d time.Duration) time.Duration {
	secs := math.Ceil(d.Seconds())
	if secs < 1 {
		secs = 1
	}
	return time.Duration(secs) * time.Second
}

// Cleanup drops buckets idle for longer than IdleTTL and returns how many
// were removed.
func (kl *KeyedLimiter) Cleanup() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	cutoff := kl.now().Add(-kl.config.IdleTTL)
	removed := 0
	for key, b := range kl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(kl.buckets, key)
			removed++
		}
	}
	return removed
}

// Run evicts idle buckets every interval until ctx ends.
func (kl *KeyedLimiter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = kl.config.IdleTTL / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			kl.Cleanup()
		}
	}
}

// Len returns the number of tracked keys.
func (kl *KeyedLimiter) Len() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.buckets)
}

// Rejected returns how many requests were refused.
func (kl *KeyedLimiter) Rejected() int64 {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return kl.rejected
}
