package cache

import (
	"bytes"
	"errors"
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrNilStore      = errors.New("cache: store is nil")
	ErrInvalidKey    = errors.New("cache: key is invalid")
	ErrKeyTooLong    = errors.New("cache: key exceeds max length")
	ErrNilCompute    = errors.New("cache: compute function is nil")
	ErrComputePanic  = errors.New("cache: compute panicked")
	ErrEmptyArtifact = errors.New("cache: computed entry has no artifact")
)

// Key identifies a cached artifact. Keys are produced by a Keyer.
type Key string

// String returns the key as a plain string.
func (k Key) String() string {
	return string(k)
}

// Entry is a rendered artifact held by the Store.
//
// Entries handed out by the Store are copies; mutating Artifact never
// affects what other callers observe.
type Entry struct {
	// Artifact is the rendered body (markup or raster bytes).
	Artifact []byte

	// Format is the output format the artifact was rendered in.
	Format string

	// CreatedAt is when the render completed.
	CreatedAt time.Time

	// SizeBytes is the accounted size of the entry.
	SizeBytes int
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	e.Artifact = bytes.Clone(e.Artifact)
	return e
}

// Equal reports whether two entries carry the same artifact and format.
func (e Entry) Equal(other Entry) bool {
	return e.Format == other.Format && bytes.Equal(e.Artifact, other.Artifact)
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key Key) error {
	s := string(key)
	if s == "" || strings.TrimSpace(s) == "" {
		return ErrInvalidKey
	}
	if len(s) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(s, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
