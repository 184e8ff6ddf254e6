package secret

import "context"

// Provider resolves a secret by its reference string.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Errors: a reference the provider cannot satisfy is an error, not
//     an empty value.
//   - Secrets must never be logged.
type Provider interface {
	// Name is the provider segment of a secretref, e.g. "env".
	Name() string

	// Resolve returns the secret for ref.
	Resolve(ctx context.Context, ref string) (string, error)

	// Close releases any backend connections.
	Close() error
}
