package provider

import (
	"errors"
	"fmt"
)

var ErrUnknownProvider = errors.New("provider: not registered")

// Registry maps provider names to configured OAuth providers. It holds
// configuration only; all auth logic lives in the providers themselves.
type Registry struct {
	providers map[string]OAuthProvider
}

// NewRegistry indexes the given providers by Name. A duplicate name
// replaces the earlier entry.
func NewRegistry(list ...OAuthProvider) *Registry {
	r := &Registry{providers: make(map[string]OAuthProvider, len(list))}
	for _, p := range list {
		r.providers[p.Name()] = p
	}
	return r
}

// Get looks a provider up by name.
func (r *Registry) Get(name string) (OAuthProvider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return p, nil
}
