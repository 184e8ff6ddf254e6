package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Key derives the deterministic composite key for a tool request.
//
// Format: tool:<toolID>|q:<query>|loc:<location>|r:<radius>[|p:<hash>]
// where every component is normalized (lowercased, whitespace trimmed and
// collapsed) and hash is the first 16 hex characters of SHA-256 over the
// canonical JSON of params. Two requests differing only by case or
// whitespace in query or location produce the same key; that collision is
// what makes cache hits possible.
//
// The location component is kept in clear text so that entries can be
// invalidated by location without decoding values.
func Key(toolID, query, location, radius string, params map[string]any) (string, error) {
	id := normalizeComponent(toolID)
	if id == "" {
		return "", ErrInvalidKey
	}

	var b strings.Builder
	b.WriteString("tool:")
	b.WriteString(id)
	b.WriteString("|q:")
	b.WriteString(normalizeComponent(query))
	b.WriteString("|loc:")
	b.WriteString(normalizeComponent(location))
	b.WriteString("|r:")
	b.WriteString(normalizeComponent(radius))

	if len(params) > 0 {
		canonical, err := canonicalize(params)
		if err != nil {
			return "", fmt.Errorf("cache: failed to canonicalize params: %w", err)
		}
		hash := sha256.Sum256(canonical)
		b.WriteString("|p:")
		b.WriteString(hex.EncodeToString(hash[:8])) // First 8 bytes = 16 hex chars
	}

	key := b.String()
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

// KeyLocation extracts the normalized location component of a composite key.
// Returns "" if the key does not carry a location.
func KeyLocation(key string) string {
	for _, part := range strings.Split(key, "|") {
		if loc, ok := strings.CutPrefix(part, "loc:"); ok {
			return loc
		}
	}
	return ""
}

// MatchesLocation reports whether a composite key's location component
// equals the given location descriptor after normalization.
func MatchesLocation(key, location string) bool {
	loc := normalizeComponent(location)
	return loc != "" && KeyLocation(key) == loc
}

// normalizeComponent lowercases, trims, and collapses inner whitespace so
// semantically-equivalent components compare equal. The key separator "|"
// is replaced to keep components unambiguous.
func normalizeComponent(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", "/")
}

// canonicalize produces a deterministic JSON representation of the input.
// Maps are sorted by key to ensure consistent ordering.
func canonicalize(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}

	switch val := v.(type) {
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := []byte("{")
	for i, k := range keys {
		if i > 0 {
			result = append(result, ',')
		}

		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		result = append(result, keyBytes...)
		result = append(result, ':')

		valBytes, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, '}')

	return result, nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	result := []byte("[")
	for i, v := range s {
		if i > 0 {
			result = append(result, ',')
		}

		valBytes, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, ']')

	return result, nil
}
