package secret

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
	Close() error
}

// EnvProvider resolves a reference as an environment variable name.
type EnvProvider struct {
	// Prefix is prepended to every reference (optional).
	Prefix string

	lookup func(string) (string, bool)
}

// NewEnvProvider creates an env provider.
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{Prefix: prefix, lookup: os.LookupEnv}
}

// Name returns "env".
func (p *EnvProvider) Name() string { return "env" }

// Resolve returns the value of the variable Prefix+ref.
func (p *EnvProvider) Resolve(_ context.Context, ref string) (string, error) {
	name := p.Prefix + ref
	v, ok := p.lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, name)
	}
	return v, nil
}

// Close is a no-op.
func (p *EnvProvider) Close() error { return nil }

// FileProvider resolves a reference as a file path, relative to Dir when
// Dir is set. Trailing newlines are trimmed.
type FileProvider struct {
	// Dir confines references to one directory (optional).
	Dir string
}

// NewFileProvider creates a file provider.
func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{Dir: dir}
}

// Name returns "file".
func (p *FileProvider) Name() string { return "file" }

// Resolve reads the referenced file.
func (p *FileProvider) Resolve(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := ref
	if p.Dir != "" {
		if filepath.IsAbs(ref) || !filepath.IsLocal(ref) {
			return "", fmt.Errorf("%w: %q escapes %s", ErrInvalidRef, ref, p.Dir)
		}
		path = filepath.Join(p.Dir, ref)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("secret: read %s: %w", ref, err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// Close is a no-op.
func (p *FileProvider) Close() error { return nil }

var (
	_ Provider = (*EnvProvider)(nil)
	_ Provider = (*FileProvider)(nil)
)
