package cache

import "time"

// Policy configures the bounds of a Store.
type Policy struct {
	// TTL is how long an entry stays fresh after it is written.
	// Default: 1 hour
	TTL time.Duration

	// MaxEntries bounds the number of stored entries.
	// Default: 1024
	MaxEntries int

	// MaxBytes bounds the total accounted size of stored entries.
	// Default: 64 MiB
	MaxBytes int64
}

// DefaultPolicy returns the default store policy.
// TTL: 1 hour, MaxEntries: 1024, MaxBytes: 64 MiB
func DefaultPolicy() Policy {
	return Policy{
		TTL:        time.Hour,
		MaxEntries: 1024,
		MaxBytes:   64 << 20,
	}
}

// WithDefaults returns a copy with zero or negative fields replaced by
// their defaults.
func (p Policy) WithDefaults() Policy {
	d := DefaultPolicy()
	if p.TTL <= 0 {
		p.TTL = d.TTL
	}
	if p.MaxEntries <= 0 {
		p.MaxEntries = d.MaxEntries
	}
	if p.MaxBytes <= 0 {
		p.MaxBytes = d.MaxBytes
	}
	return p
}

// MaxAgeSeconds returns the TTL in whole seconds, for HTTP cache headers.
func (p Policy) MaxAgeSeconds() int {
	return int(p.WithDefaults().TTL / time.Second)
}

// Admits reports whether an entry of the given size may be stored at all.
func (p Policy) Admits(size int) bool {
	return int64(size) <= p.WithDefaults().MaxBytes
}
