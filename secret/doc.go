// Package secret keeps upstream credentials out of configuration
// files. A config value may reference a secret instead of holding one:
//
//	secretref:env:SEARCH_API_KEY           full-value reference
//	Bearer secretref:env:SEARCH_API_KEY    inline reference
//
// A Resolver expands environment variables strictly (ExpandEnvStrict)
// and resolves each reference through a registered Provider, such as
// the environment-backed EnvProvider.
package secret
