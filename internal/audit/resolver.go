package audit

import (
	"net/url"
	"strings"
)

// Resolve normalizes a reference found in a document against the page's base
// URL. Rules, in order: data: and javascript: references are rejected (not
// real resources); protocol-relative references (//host/...) are promoted to
// http; root-relative references resolve against the base origin; all other
// non-absolute references resolve relative to the full base URL
// (directory-relative semantics); absolute http(s) references pass through.
// Malformed references are dropped: ok is false and the caller must skip them
// silently rather than report them as broken.
//
// Resolution is idempotent: resolving an already-resolved URL against any
// base returns it unchanged.
func Resolve(ref string, base *url.URL) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}

	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "data:") || strings.HasPrefix(lower, "javascript:") {
		return "", false
	}

	if strings.HasPrefix(ref, "//") {
		ref = "http://" + ref[2:]
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return "", false
	}

	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	if resolved.Host == "" {
		return "", false
	}

	return resolved.String(), true
}

// Internal reports whether a resolved URL belongs to the base URL's origin
// (same scheme and host).
func Internal(resolved string, base *url.URL) bool {
	u, err := url.Parse(resolved)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, base.Scheme) && strings.EqualFold(u.Host, base.Host)
}
