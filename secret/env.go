package secret

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvProvider resolves secret refs against process environment variables.
// The ref is the variable name: secretref:env:SEARCH_API_KEY.
type EnvProvider struct{}

// NewEnvProvider creates an environment-backed provider.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{}
}

// Name returns "env".
func (p *EnvProvider) Name() string { return "env" }

// Resolve looks up the named environment variable. A missing variable
// is an error; an empty value is returned as-is and left to the
// resolver's strict mode.
func (p *EnvProvider) Resolve(_ context.Context, ref string) (string, error) {
	name := strings.TrimSpace(ref)
	if name == "" {
		return "", fmt.Errorf("env secret ref is empty")
	}
	value, ok := os.LookupEnv(name)
	if !ok {
		return "", fmt.Errorf("environment variable %q is not set", name)
	}
	return value, nil
}

// Close is a no-op.
func (p *EnvProvider) Close() error { return nil }

var _ Provider = (*EnvProvider)(nil)
