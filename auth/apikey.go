package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
	"time"
)

// APIKeyConfig configures operator key authentication.
type APIKeyConfig struct {
	// HeaderName carries the key. "Authorization: Bearer <key>" is always
	// accepted as well.
	// Default: "X-API-Key"
	HeaderName string
}

// APIKeyInfo describes one operator key. Only the SHA-256 of the key is
// held in memory.
type APIKeyInfo struct {
	ID        string
	KeyHash   string
	Principal string
	ExpiresAt time.Time // zero never expires
}

func (k *APIKeyInfo) expired(now time.Time) bool {
	return !k.ExpiresAt.IsZero() && now.After(k.ExpiresAt)
}

// APIKeyStore looks keys up by hash. A missing key is (nil, nil).
type APIKeyStore interface {
	Lookup(ctx context.Context, keyHash string) (*APIKeyInfo, error)
}

// APIKeyAuthenticator guards the admin endpoints (cache stats and purge).
type APIKeyAuthenticator struct {
	header string
	store  APIKeyStore
	now    func() time.Time
}

// NewAPIKeyAuthenticator creates an APIKeyAuthenticator over store.
func NewAPIKeyAuthenticator(config APIKeyConfig, store APIKeyStore) *APIKeyAuthenticator {
	if config.HeaderName == "" {
		config.HeaderName = "X-API-Key"
	}
	return &APIKeyAuthenticator{header: config.HeaderName, store: store, now: time.Now}
}

func (a *APIKeyAuthenticator) Name() string       { return string(MethodAPIKey) }
func (a *APIKeyAuthenticator) HeaderName() string { return a.header }

// KeyFromRequest returns the presented key, preferring the configured
// header over a bearer Authorization header.
func (a *APIKeyAuthenticator) KeyFromRequest(r *http.Request) string {
	if k := strings.TrimSpace(r.Header.Get(a.header)); k != "" {
		return k
	}
	scheme, rest, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(rest)
	}
	return ""
}

// AuthenticateKey checks apiKey against the store. Rejections are
// reported in the Result; the error is reserved for store failures.
func (a *APIKeyAuthenticator) AuthenticateKey(ctx context.Context, apiKey string) (*Result, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return Failure(ErrMissingCredentials, MethodAPIKey), nil
	}

	info, err := a.store.Lookup(ctx, HashAPIKey(apiKey))
	switch {
	case err != nil:
		return nil, err
	case info == nil:
		return Failure(ErrInvalidCredentials, MethodAPIKey), nil
	case info.expired(a.now()):
		return Failure(ErrTokenExpired, MethodAPIKey), nil
	}

	res := Success(MethodAPIKey)
	res.Principal = info.Principal
	return res, nil
}

// HashAPIKey is the store representation of key: hex SHA-256.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// MemoryAPIKeyStore holds keys loaded from configuration.
type MemoryAPIKeyStore struct {
	mu   sync.RWMutex
	keys map[string]*APIKeyInfo
}

func NewMemoryAPIKeyStore() *MemoryAPIKeyStore {
	return &MemoryAPIKeyStore{keys: make(map[string]*APIKeyInfo)}
}

func (s *MemoryAPIKeyStore) Lookup(_ context.Context, keyHash string) (*APIKeyInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys[keyHash], nil
}

// Add registers info, replacing any key with the same hash.
func (s *MemoryAPIKeyStore) Add(info *APIKeyInfo) {
	s.mu.Lock()
	s.keys[info.KeyHash] = info
	s.mu.Unlock()
}

func (s *MemoryAPIKeyStore) Remove(keyHash string) {
	s.mu.Lock()
	delete(s.keys, keyHash)
	s.mu.Unlock()
}

func (s *MemoryAPIKeyStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

var _ APIKeyStore = (*MemoryAPIKeyStore)(nil)
