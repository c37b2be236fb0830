package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// DefaultNamespace prefixes every key produced by DefaultKeyer.
const DefaultNamespace = "qrpreview:v1"

// Keyer derives deterministic cache keys from content and a canonical
// option serialization.
//
// Contract:
// - Determinism: same inputs must produce same key.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key returns the key for content rendered with canonical options.
	Key(content string, canonical []byte) Key
}

// DefaultKeyer generates SHA-256 based cache keys.
type DefaultKeyer struct {
	namespace string
}

// NewDefaultKeyer creates a keyer for the given namespace.
// An empty namespace falls back to DefaultNamespace.
func NewDefaultKeyer(namespace string) *DefaultKeyer {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &DefaultKeyer{namespace: namespace}
}

// Namespace returns the key prefix.
func (k *DefaultKeyer) Namespace() string {
	return k.namespace
}

// Key generates a deterministic cache key.
// Format: <namespace>:<hex SHA-256(namespace | len(content) | content | canonical)>
//
// The content length is written before the content so that a content
// suffix can never be confused with the start of the option block.
func (k *DefaultKeyer) Key(content string, canonical []byte) Key {
	h := sha256.New()
	h.Write([]byte(k.namespace))
	h.Write([]byte{0})

	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(content)))
	h.Write(n[:])
	h.Write([]byte(content))
	h.Write(canonical)

	return Key(k.namespace + ":" + hex.EncodeToString(h.Sum(nil)))
}

// Ensure DefaultKeyer implements Keyer
var _ Keyer = (*DefaultKeyer)(nil)
