// Package auth protects the operator surfaces of the analysis service.
//
// It provides two authenticators, static operator API keys (SHA-256
// hashed, constant-time compare) and HMAC-signed JWT bearer tokens,
// plus HTTP middleware that gates a handler behind any of them and
// attaches the authenticated identity to the request context.
package auth
