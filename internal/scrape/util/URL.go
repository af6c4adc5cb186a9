package util

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrNotAbsolute = errors.New("link is not an absolute http(s) url")

// ResolveLink resolves href against base and returns an absolute http(s) URL
// with the fragment dropped.
func ResolveLink(base, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", ErrNotAbsolute
	}
	b, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("parse base %q: %w", base, err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse href %q: %w", href, err)
	}
	u := b.ResolveReference(ref)
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrNotAbsolute, u.String())
	}
	return u.String(), nil
}

// PathMatches reports whether href's path contains the detail-path pattern.
func PathMatches(href, pattern string) bool {
	if pattern == "" {
		return true
	}
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return false
	}
	return strings.Contains(u.Path, pattern)
}
