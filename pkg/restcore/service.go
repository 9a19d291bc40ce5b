package restcore

import (
	"net/url"
	"strings"
	"time"

	"github.com/eshaffer321/restcore-go/internal/body"
	"github.com/eshaffer321/restcore-go/internal/decoder"
)

// Method is an HTTP method
type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodPatch   Method = "PATCH"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
	MethodConnect Method = "CONNECT"
)

// Valid reports whether m is one of the supported methods
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch,
		MethodHead, MethodOptions, MethodTrace, MethodConnect:
		return true
	}
	return false
}

// Shape is the expected payload shape of a response
type Shape = decoder.Shape

const (
	ShapeAuto     = decoder.ShapeAuto
	ShapeSingle   = decoder.ShapeSingle
	ShapeSequence = decoder.ShapeSequence
)

// Service describes one API call. It is plain data and is not modified by
// the client.
type Service struct {
	// BaseURL falls back to ClientOptions.BaseURL when empty
	BaseURL string
	Path    string

	// Method defaults to GET
	Method Method

	// Headers override the client defaults for this call
	Headers Header

	// Body is sent as canonical JSON
	Body *body.Value

	// Multipart switches the call to a form upload. Client default headers
	// and the session Authorization header are not sent with uploads; add
	// any the server needs to Headers.
	Multipart *body.Multipart

	// KeyPaths locate the payload inside the response, e.g. "data/items".
	// The first path that resolves wins.
	KeyPaths []string
	Shape    Shape

	// CacheExpiry bounds how long a GET response is cached. Zero caches
	// until the cache is cleared.
	CacheExpiry time.Duration
	NoCache     bool
}

func (s *Service) method() Method {
	if s.Method == "" {
		return MethodGet
	}
	return s.Method
}

// URL composes the base URL and path and percent-encodes the result.
// fallbackBase is used when the service has no BaseURL.
func (s *Service) URL(fallbackBase string) (string, error) {
	base := s.BaseURL
	if base == "" {
		base = fallbackBase
	}

	raw := base
	if s.Path != "" {
		raw = strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(s.Path, "/")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", WrapError(KindInvalidURL, err, "malformed URL")
	}
	if u.Scheme == "" || u.Host == "" {
		return "", NewError(KindInvalidURL, "URL must be absolute: "+raw)
	}

	// String escapes path characters that were not already encoded
	return u.String(), nil
}
