package auth

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// AuthenticatorFactory creates a token authenticator from configuration.
type AuthenticatorFactory func(cfg map[string]any) (TokenAuthenticator, error)

// Registry manages token authenticator factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]AuthenticatorFactory
}

// NewRegistry creates a new auth registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]AuthenticatorFactory),
	}
}

// Register adds an authenticator factory.
func (r *Registry) Register(name string, factory AuthenticatorFactory) error {
	if name == "" || factory == nil {
		return errors.New("invalid authenticator registration")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("authenticator %q already registered", name)
	}

	r.factories[name] = factory
	return nil
}

// Create instantiates an authenticator by name.
func (r *Registry) Create(name string, cfg map[string]any) (TokenAuthenticator, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("authenticator %q not found", name)
	}

	return factory(cfg)
}

// List returns registered authenticator names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global auth registry with built-in factories.
var DefaultRegistry = NewRegistry()

func init() {
	_ = DefaultRegistry.Register("hmac", func(cfg map[string]any) (TokenAuthenticator, error) {
		return NewHMACAuthenticator(hmacConfigFrom(cfg))
	})

	_ = DefaultRegistry.Register("jwt", func(cfg map[string]any) (TokenAuthenticator, error) {
		return NewJWTAuthenticator(jwtConfigFrom(cfg))
	})

	// Accept both token kinds signed with the same secret; HMAC signs.
	_ = DefaultRegistry.Register("any", func(cfg map[string]any) (TokenAuthenticator, error) {
		h, err := NewHMACAuthenticator(hmacConfigFrom(cfg))
		if err != nil {
			return nil, err
		}
		j, err := NewJWTAuthenticator(jwtConfigFrom(cfg))
		if err != nil {
			return nil, err
		}
		return NewCompositeAuthenticator(h, j), nil
	})
}

func hmacConfigFrom(cfg map[string]any) HMACConfig {
	config := HMACConfig{}
	if secret, ok := cfg["secret"].(string); ok {
		config.Secret = []byte(secret)
	}
	switch n := cfg["token_bytes"].(type) {
	case int:
		config.TokenBytes = n
	case float64:
		config.TokenBytes = int(n)
	}
	return config
}

func jwtConfigFrom(cfg map[string]any) JWTConfig {
	config := JWTConfig{}
	if secret, ok := cfg["secret"].(string); ok {
		config.Secret = []byte(secret)
	}
	if issuer, ok := cfg["issuer"].(string); ok {
		config.Issuer = issuer
	}
	if ttl, ok := cfg["ttl"].(string); ok {
		if d, err := time.ParseDuration(ttl); err == nil {
			config.TTL = d
		}
	}
	if leeway, ok := cfg["leeway"].(string); ok {
		if d, err := time.ParseDuration(leeway); err == nil {
			config.Leeway = d
		}
	}
	return config
}
