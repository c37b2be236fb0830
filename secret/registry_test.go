package secret

import (
	"errors"
	"testing"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(" ", nil); err == nil {
		t.Error("blank registration should fail")
	}

	factory := func(map[string]any) (Provider, error) { return NewEnvProvider(""), nil }
	if err := r.Register("env", factory); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register("env", factory); err == nil {
		t.Error("duplicate registration should fail")
	}
	if _, err := r.Create("vault", nil); !errors.Is(err, ErrProviderNotRegistered) {
		t.Errorf("Create(vault) error = %v", err)
	}
}

func TestDefaultRegistry(t *testing.T) {
	names := DefaultRegistry.List()
	if len(names) != 2 || names[0] != "env" || names[1] != "file" {
		t.Fatalf("List() = %v, want [env file]", names)
	}

	p, err := DefaultRegistry.Create("env", map[string]any{"prefix": "APP_"})
	if err != nil {
		t.Fatalf("Create(env) error = %v", err)
	}
	if p.(*EnvProvider).Prefix != "APP_" {
		t.Errorf("Prefix = %q", p.(*EnvProvider).Prefix)
	}

	p, err = DefaultRegistry.Create("file", map[string]any{"dir": "/run/secrets"})
	if err != nil || p.(*FileProvider).Dir != "/run/secrets" {
		t.Errorf("Create(file) = %v, %v", p, err)
	}
}
