// Package domains derives normalized web domains from URLs, email addresses
// and bare host names. Both the ingestion field extractor and the matching
// engine rely on the same derivation so that stored and queried domains
// compare exactly.
package domains

import "strings"

// Derive normalizes url, email address or host input to a bare domain.
// Returns false when no plausible domain can be derived: the result must
// contain a dot and be at least 4 characters long.
func Derive(input string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return "", false
	}

	if at := strings.LastIndex(s, "@"); at >= 0 {
		s = s[at+1:]
	} else {
		s = strings.TrimPrefix(s, "http://")
		s = strings.TrimPrefix(s, "https://")
		s = strings.TrimPrefix(s, "www.")
	}

	// Strip any path or query suffix.
	if i := strings.IndexAny(s, "/?"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)

	if len(s) < 4 || !strings.Contains(s, ".") {
		return "", false
	}
	return s, true
}
