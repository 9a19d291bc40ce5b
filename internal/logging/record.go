// Package logging renders requests and responses as human-readable records
// and provides the default Logger backend.
package logging

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Privacy is the sensitivity tier of a logged value
type Privacy int

const (
	// Auto picks a tier from the value's name
	Auto Privacy = iota
	Public
	Private
	Sensitive
)

func (p Privacy) String() string {
	switch p {
	case Public:
		return "public"
	case Private:
		return "private"
	case Sensitive:
		return "sensitive"
	default:
		return "auto"
	}
}

var sensitiveHeaders = map[string]bool{
	"Authorization":       true,
	"Proxy-Authorization": true,
	"Cookie":              true,
	"Set-Cookie":          true,
	"X-Api-Key":           true,
	"X-Auth-Token":        true,
}

var sensitiveParams = []string{"token", "key", "secret", "password", "signature", "auth"}

// HeaderPrivacy resolves Auto for a header name
func HeaderPrivacy(name string) Privacy {
	if sensitiveHeaders[http.CanonicalHeaderKey(name)] {
		return Sensitive
	}
	return Public
}

// Redact renders value according to its tier
func Redact(value string, p Privacy) string {
	switch p {
	case Private:
		return "<private>"
	case Sensitive:
		return "<redacted>"
	default:
		return value
	}
}

// SanitizeURL redacts query parameters whose names look like credentials
func SanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	changed := false
	for name := range q {
		lower := strings.ToLower(name)
		for _, s := range sensitiveParams {
			if strings.Contains(lower, s) {
				q.Set(name, "REDACTED")
				changed = true
				break
			}
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// CurlCommand renders req as a shell command that reproduces it.
// Sensitive headers are redacted.
func CurlCommand(req *http.Request, body []byte) string {
	if req == nil {
		return ""
	}

	parts := []string{"curl", "-X", req.Method}

	names := make([]string, 0, len(req.Header))
	for name := range req.Header {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, v := range req.Header[name] {
			v = Redact(v, HeaderPrivacy(name))
			parts = append(parts, "-H", shellQuote(name+": "+v))
		}
	}

	if len(body) > 0 {
		parts = append(parts, "-d", shellQuote(string(body)))
	}

	target := ""
	if req.URL != nil {
		target = SanitizeURL(req.URL.String())
	}
	parts = append(parts, shellQuote(target))

	return strings.Join(parts, " ")
}

// RequestRecord is a one-line description of an outgoing request
func RequestRecord(req *http.Request, body []byte) string {
	if req == nil {
		return ""
	}
	return fmt.Sprintf("%s %s | %s", req.Method, SanitizeURL(req.URL.String()), CurlCommand(req, body))
}

// ResponseRecord is a one-line description of a response
func ResponseRecord(resp *http.Response, body []byte) string {
	if resp == nil {
		return ""
	}

	target := ""
	if resp.Request != nil && resp.Request.URL != nil {
		target = SanitizeURL(resp.Request.URL.String())
	}

	record := fmt.Sprintf("%d %s", resp.StatusCode, target)
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		record += " content-type=" + ct
	}
	if len(body) > 0 {
		record += fmt.Sprintf(" bytes=%d", len(body))
	}
	return record
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
