package secret

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// RefPrefix marks a configuration value as a secret reference.
const RefPrefix = "secretref:"

// refPattern matches a reference wherever it appears inside a value,
// so "Bearer secretref:env:SEARCH_API_KEY" substitutes in place.
var refPattern = regexp.MustCompile(`secretref:([^:\s]+):([^\s]+)`)

// Resolver turns configuration values into usable secrets.
//
// A value containing "secretref:<provider>:<ref>" has each reference
// resolved through the named provider. Every value, reference or not,
// first goes through strict environment expansion. A nil Resolver
// still expands the environment, so strategies may treat their
// resolver as optional until a value actually carries a reference.
type Resolver struct {
	providers map[string]Provider
	strict    bool
}

// NewResolver creates a resolver. With strict set, a provider
// returning an empty secret is treated as an error.
func NewResolver(strict bool, providers ...Provider) *Resolver {
	r := &Resolver{
		providers: make(map[string]Provider),
		strict:    strict,
	}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a provider under its own name.
func (r *Resolver) Register(p Provider) {
	if r == nil || p == nil {
		return
	}
	if r.providers == nil {
		r.providers = make(map[string]Provider)
	}
	r.providers[p.Name()] = p
}

// ResolveValue expands environment variables in value and resolves any
// secret references through the registered providers. A reference in a
// value handled by a nil resolver is an error rather than a literal
// "secretref:" string leaking into an upstream request.
func (r *Resolver) ResolveValue(ctx context.Context, value string) (string, error) {
	expanded, err := ExpandEnvStrict(value)
	if err != nil {
		return "", err
	}
	if !strings.Contains(expanded, RefPrefix) {
		return expanded, nil
	}
	if r == nil {
		return "", fmt.Errorf("secret: value carries a secret reference but no resolver is configured")
	}

	var resolveErr error
	out := refPattern.ReplaceAllStringFunc(expanded, func(match string) string {
		name, ref, ok := ParseSecretRef(match)
		if !ok {
			return match
		}
		resolved, err := r.lookup(ctx, name, ref)
		if err != nil {
			if resolveErr == nil {
				resolveErr = err
			}
			return match
		}
		return resolved
	})
	if resolveErr != nil {
		return "", resolveErr
	}
	return out, nil
}

// ParseSecretRef splits a "secretref:<provider>:<ref>" value into its
// provider name and reference.
func ParseSecretRef(value string) (provider, ref string, ok bool) {
	rest, found := strings.CutPrefix(value, RefPrefix)
	if !found {
		return "", "", false
	}
	provider, ref, ok = strings.Cut(rest, ":")
	if !ok || provider == "" || ref == "" {
		return "", "", false
	}
	return provider, ref, true
}

func (r *Resolver) lookup(ctx context.Context, name, ref string) (string, error) {
	provider, ok := r.providers[name]
	if !ok || provider == nil {
		return "", fmt.Errorf("secret: provider %q is not registered", name)
	}
	resolved, err := provider.Resolve(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("secret: resolve %s:%s: %w", name, ref, err)
	}
	if r.strict && resolved == "" {
		return "", fmt.Errorf("secret: provider %q returned an empty value for %q", name, ref)
	}
	return resolved, nil
}
