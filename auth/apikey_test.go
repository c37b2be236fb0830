package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAPIKeyAuthenticator(t *testing.T) {
	store := NewMemoryAPIKeyStore()
	store.Add(&APIKeyInfo{ID: "k1", KeyHash: HashAPIKey("ops-key"), Principal: "ops"})
	store.Add(&APIKeyInfo{
		ID:        "k2",
		KeyHash:   HashAPIKey("old-key"),
		Principal: "old",
		ExpiresAt: time.Now().Add(-time.Minute),
	})

	a := NewAPIKeyAuthenticator(APIKeyConfig{}, store)
	if a.HeaderName() != "X-API-Key" {
		t.Errorf("HeaderName() = %q, want X-API-Key", a.HeaderName())
	}
	if a.Name() != "api_key" {
		t.Errorf("Name() = %q, want api_key", a.Name())
	}

	tests := []struct {
		name          string
		key           string
		wantAuth      bool
		wantPrincipal string
		wantErr       error
	}{
		{name: "valid", key: "ops-key", wantAuth: true, wantPrincipal: "ops"},
		{name: "padded", key: "  ops-key ", wantAuth: true, wantPrincipal: "ops"},
		{name: "missing", key: "", wantErr: ErrMissingCredentials},
		{name: "unknown", key: "nope", wantErr: ErrInvalidCredentials},
		{name: "expired", key: "old-key", wantErr: ErrTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := a.AuthenticateKey(context.Background(), tt.key)
			if err != nil {
				t.Fatalf("AuthenticateKey() error = %v", err)
			}
			if res.Authenticated != tt.wantAuth {
				t.Fatalf("Authenticated = %v, want %v", res.Authenticated, tt.wantAuth)
			}
			if res.Principal != tt.wantPrincipal {
				t.Errorf("Principal = %q, want %q", res.Principal, tt.wantPrincipal)
			}
			if tt.wantErr != nil && !errors.Is(res.Error, tt.wantErr) {
				t.Errorf("Error = %v, want %v", res.Error, tt.wantErr)
			}
		})
	}
}

func TestMemoryAPIKeyStore(t *testing.T) {
	store := NewMemoryAPIKeyStore()
	hash := HashAPIKey("k")
	store.Add(&APIKeyInfo{ID: "1", KeyHash: hash})
	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", store.Len())
	}

	store.Remove(hash)
	info, err := store.Lookup(context.Background(), hash)
	if err != nil || info != nil {
		t.Errorf("Lookup() after Remove = %v, %v; want nil, nil", info, err)
	}
}

func TestHashAPIKey(t *testing.T) {
	if HashAPIKey("a") == HashAPIKey("b") {
		t.Error("different keys should hash differently")
	}
	if len(HashAPIKey("a")) != 64 {
		t.Errorf("hash length = %d, want 64", len(HashAPIKey("a")))
	}
}

func TestAPIKeyAuthenticator_KeyFromRequest(t *testing.T) {
	a := NewAPIKeyAuthenticator(APIKeyConfig{HeaderName: "X-Admin-Key"}, NewMemoryAPIKeyStore())

	tests := []struct {
		name   string
		header map[string]string
		want   string
	}{
		{name: "custom header", header: map[string]string{"X-Admin-Key": " k1 "}, want: "k1"},
		{name: "bearer", header: map[string]string{"Authorization": "Bearer k2"}, want: "k2"},
		{name: "bearer lowercase", header: map[string]string{"Authorization": "bearer k3"}, want: "k3"},
		{name: "header wins", header: map[string]string{"X-Admin-Key": "k1", "Authorization": "Bearer k2"}, want: "k1"},
		{name: "basic ignored", header: map[string]string{"Authorization": "Basic abc"}, want: ""},
		{name: "none", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/preview/stats", nil)
			for k, v := range tt.header {
				r.Header.Set(k, v)
			}
			if got := a.KeyFromRequest(r); got != tt.want {
				t.Errorf("KeyFromRequest() = %q, want %q", got, tt.want)
			}
		})
	}
}
