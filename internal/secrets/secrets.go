// Package secrets abstracts where credentials come from. The original
// deployment kept the blob-storage connection string in a keychain-style
// store; here any Provider can serve it, and a Chain expresses fallback
// order (environment first, Vault second).
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrNotFound indicates the named secret does not exist in the provider.
var ErrNotFound = errors.New("secret not found")

// Provider resolves a named secret. The interpretation of name is
// provider-specific: an environment variable for Env, a KV path for Vault.
type Provider interface {
	Get(ctx context.Context, name string) (string, error)
}

// Env resolves secrets from process environment variables.
type Env struct{}

var _ Provider = Env{}

func (Env) Get(_ context.Context, name string) (string, error) {
	if v := os.Getenv(name); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: env %s", ErrNotFound, name)
}

// Static serves secrets from a fixed map. Test-only.
type Static map[string]string

var _ Provider = Static{}

func (s Static) Get(_ context.Context, name string) (string, error) {
	if v, ok := s[name]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Chain tries each provider in order and returns the first hit.
type Chain []Provider

var _ Provider = Chain{}

func (c Chain) Get(ctx context.Context, name string) (string, error) {
	for _, p := range c {
		v, err := p.Get(ctx, name)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}
