package urlutil

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// CacheBustParam is the query parameter appended to fetch URLs so
// intermediaries never answer a fragment request from a full-page cache entry.
const CacheBustParam = "_"

// CanonicalOrigin reduces a URL to its origin: lowercased scheme and host,
// default ports omitted, no path, query or fragment.
func CanonicalOrigin(sourceUrl url.URL) url.URL {
	origin := url.URL{
		Scheme: lowerASCII(sourceUrl.Scheme),
		Host:   lowerASCII(sourceUrl.Host),
	}

	if host, port := origin.Hostname(), origin.Port(); port != "" {
		if (origin.Scheme == "http" && port == "80") ||
			(origin.Scheme == "https" && port == "443") {
			origin.Host = host
		}
	}

	return origin
}

// SnapshotKey maps a URL to the key snapshots and history entries are stored under:
// the path (never empty) followed by the raw query, without the fragment.
//
// Properties:
//   - Pure and deterministic
//   - Idempotent: parsing a key and keying it again yields the same key
//   - Origin-free: scheme and host do not take part in the key
func SnapshotKey(target url.URL) string {
	path := target.EscapedPath()
	if path == "" {
		path = "/"
	}
	if target.RawQuery == "" {
		return path
	}
	return path + "?" + target.RawQuery
}

// ParseKey parses a raw href, absolute or relative, and returns its snapshot key.
// Relative references are resolved against base so "../b" from "/a/c" keys as "/b".
func ParseKey(base url.URL, raw string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return SnapshotKey(*base.ResolveReference(ref)), nil
}

// SameOrigin compares scheme and hostname the way a browser link check does;
// ports are ignored.
func SameOrigin(a url.URL, b url.URL) bool {
	return lowerASCII(a.Scheme) == lowerASCII(b.Scheme) &&
		lowerASCII(a.Hostname()) == lowerASCII(b.Hostname())
}

// IsFragmentOnly reports whether href only targets an anchor in the current page.
func IsFragmentOnly(href string) bool {
	return strings.HasPrefix(strings.TrimSpace(href), "#")
}

// WithCacheBuster returns a copy of target with the cache-busting parameter
// set to the unix millisecond timestamp of now. Existing query values are kept.
func WithCacheBuster(target url.URL, now time.Time) url.URL {
	busted := target
	query := busted.Query()
	query.Set(CacheBustParam, strconv.FormatInt(now.UnixMilli(), 10))
	busted.RawQuery = query.Encode()
	return busted
}

// lowerASCII converts ASCII characters to lowercase without allocating.
// This is faster than strings.ToLower for ASCII-only strings.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
