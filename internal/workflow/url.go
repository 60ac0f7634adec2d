package workflow

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeURL standardizes a URL for use as a cache/lookup key.
// It lowercases the host, strips a leading "www.", and strips trailing
// slashes from the path; scheme and query are preserved. The operation is
// idempotent: normalizing an already-normalized URL returns it unchanged.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("url has no host")
	}

	u.Host = strings.ToLower(u.Host)
	u.Host = strings.TrimPrefix(u.Host, "www.")
	u.Path = strings.TrimRight(u.Path, "/")

	return u.String(), nil
}

// Hostname extracts the lowercase host (without port) from a URL, for
// blocklist matching and rate limiting. Returns "" if the URL is invalid.
func Hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
