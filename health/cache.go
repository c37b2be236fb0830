package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/qrpreview/cache"
)

// StatsSource exposes cache statistics.
type StatsSource interface {
	Stats() cache.Stats
}

// CacheCheckerConfig configures the cache pressure checker.
type CacheCheckerConfig struct {
	// DegradedRatio is the bytes/MaxBytes ratio that reports degraded.
	// Default: 0.9
	DegradedRatio float64
}

// CacheChecker reports degraded when the preview cache nears its byte
// budget, which means eviction is churning and hit rates will drop.
type CacheChecker struct {
	source StatsSource
	config CacheCheckerConfig
}

// NewCacheChecker creates a cache checker.
func NewCacheChecker(source StatsSource, config CacheCheckerConfig) *CacheChecker {
	if config.DegradedRatio <= 0 || config.DegradedRatio > 1 {
		config.DegradedRatio = 0.9
	}
	return &CacheChecker{source: source, config: config}
}

// Name returns "cache".
func (c *CacheChecker) Name() string {
	return "cache"
}

// Check performs the cache health check.
func (c *CacheChecker) Check(context.Context) Result {
	s := c.source.Stats()
	details := map[string]any{
		"entries":     s.Entries,
		"bytes":       s.Bytes,
		"max_entries": s.MaxEntries,
		"max_bytes":   s.MaxBytes,
		"hits":        s.Hits,
		"misses":      s.Misses,
		"evictions":   s.Evictions,
	}

	if s.MaxBytes <= 0 {
		return Healthy("cache unbounded").WithDetails(details)
	}

	ratio := float64(s.Bytes) / float64(s.MaxBytes)
	msg := fmt.Sprintf("cache at %.1f%% of byte budget", ratio*100)
	if ratio >= c.config.DegradedRatio {
		return Degraded(msg).WithDetails(details)
	}
	return Healthy(msg).WithDetails(details)
}
