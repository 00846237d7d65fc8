package pipeline

import (
	"net/url"
	"strings"
	"unicode"
)

const invalidURLMessage = "Please enter a valid URL (e.g., https://example.com)"

// NormalizeURL turns user input into an absolute http(s) URL.
// Whitespace is trimmed, a mistyped comma is read as a dot ("example,com"),
// and https:// is assumed when no scheme is given.
func NormalizeURL(raw string) (NormalizedURL, error) {
	candidate := strings.Replace(strings.TrimSpace(raw), ",", ".", 1)
	if candidate == "" {
		return "", NewError(KindInvalidURL, invalidURLMessage, nil)
	}
	if !hasHTTPScheme(candidate) {
		candidate = "https://" + candidate
	}

	u, err := url.Parse(candidate)
	if err != nil {
		return "", NewError(KindInvalidURL, invalidURLMessage, err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", NewError(KindInvalidURL, invalidURLMessage, nil)
	}
	if u.Hostname() == "" || strings.IndexFunc(u.Host, unicode.IsSpace) >= 0 {
		return "", NewError(KindInvalidURL, invalidURLMessage, nil)
	}
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" && u.RawPath == "" {
		u.Path = "/"
	}
	return NormalizedURL(u.String()), nil
}

func hasHTTPScheme(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
