package usecase

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/plantarium/catalog/internal/domain"
)

// Package-level compiled regex patterns shared by all matchers
var (
	// Matches any character outside [a-z0-9] after lower-casing
	nonAlphanumericPattern = regexp.MustCompile(`[^a-z0-9]`)

	// Matches runs of non-alphanumeric characters (for space/hyphen collapsing)
	nonAlphanumericRunPattern = regexp.MustCompile(`[^a-z0-9]+`)

	// Matches repeated slashes in a URL path
	repeatedSlashPattern = regexp.MustCompile(`/{2,}`)
)

// NormalizeIdentifier canonicalizes a SKU/UPC/model-number style identifier:
// lower-case, all non-alphanumeric characters stripped. "UPC-123 456" and
// "upc123456" collapse to the same key.
func NormalizeIdentifier(s string) string {
	return nonAlphanumericPattern.ReplaceAllString(strings.ToLower(s), "")
}

// NormalizeScientificName canonicalizes a botanical name: lower-case,
// non-alphanumeric runs collapsed to single spaces, trimmed. An empty result
// must never be used as a match key; callers guard explicitly.
func NormalizeScientificName(s string) string {
	return strings.TrimSpace(nonAlphanumericRunPattern.ReplaceAllString(strings.ToLower(s), " "))
}

// NormalizeSlug canonicalizes a URL slug: lower-case, non-alphanumeric runs
// collapsed to single hyphens, leading/trailing hyphens trimmed.
func NormalizeSlug(s string) string {
	return strings.Trim(nonAlphanumericRunPattern.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// normalizeModelText canonicalizes free-form model/name text for the
// brand+model fingerprint: lower-case, punctuation and whitespace runs
// collapsed to single spaces.
func normalizeModelText(s string) string {
	return NormalizeScientificName(s)
}

// NormalizeOfferURL produces a byte-stable key for an offer URL so that two
// URLs differing only in tracking-parameter order, capitalization, or
// default-port annotation are recognized as identical:
//   - fragment dropped
//   - scheme and hostname lower-cased
//   - default port dropped (80 for http, 443 for https)
//   - repeated path slashes collapsed, one trailing slash dropped (root "/" kept)
//   - query parameters sorted by (key, value) and re-serialized
//
// An unparseable URL returns domain.ErrInvalidURL; the caller surfaces it
// rather than guessing a fingerprint.
func NormalizeOfferURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", domain.ErrInvalidURL, raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q: missing scheme or host", domain.ErrInvalidURL, raw)
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	if h, p, splitErr := net.SplitHostPort(host); splitErr == nil {
		if (scheme == "http" && p == "80") || (scheme == "https" && p == "443") {
			host = h
		}
	}

	path := repeatedSlashPattern.ReplaceAllString(u.EscapedPath(), "/")
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(host)
	b.WriteString(path)
	if query := sortedQuery(u.Query()); query != "" {
		b.WriteByte('?')
		b.WriteString(query)
	}
	return b.String(), nil
}

// sortedQuery re-serializes query parameters ordered by (key, value)
// lexicographically. url.Values.Encode sorts by key only and keeps values in
// arrival order, which is not stable enough for a fingerprint key.
func sortedQuery(values url.Values) string {
	type pair struct{ key, value string }
	var pairs []pair
	for key, vs := range values {
		for _, v := range vs {
			pairs = append(pairs, pair{key, v})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].key != pairs[j].key {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].value < pairs[j].value
	})

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}
