package restcore

import (
	"context"
	"net/http"

	"github.com/eshaffer321/restcore-go/internal/body"
	"github.com/eshaffer321/restcore-go/internal/cache"
	"github.com/eshaffer321/restcore-go/internal/decoder"
	"github.com/eshaffer321/restcore-go/internal/logging"
	"github.com/eshaffer321/restcore-go/internal/retry"
	"github.com/eshaffer321/restcore-go/internal/transport"
	"github.com/eshaffer321/restcore-go/internal/types"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// RequestIDHeader carries a fresh id on every attempt
const RequestIDHeader = "X-Request-ID"

// Do runs svc and decodes the response into T or []T. The returned error is
// always an *Error.
func Do[T any](ctx context.Context, c *Client, svc *Service) (*Result[T], error) {
	result, err := execute[T](ctx, c, svc)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Go runs svc on its own goroutine and delivers the outcome to done exactly once
func Go[T any](ctx context.Context, c *Client, svc *Service, done func(*Result[T], error)) {
	go func() {
		result, err := Do[T](ctx, c, svc)
		if done != nil {
			done(result, err)
		}
	}()
}

// call is the prepared, immutable form of a service call
type call struct {
	method    string
	url       string
	body      []byte
	headers   Header
	multipart bool
}

func execute[T any](ctx context.Context, c *Client, svc *Service) (*Result[T], *Error) {
	if svc == nil {
		return nil, NewError(KindInvalidRequest, "service is nil")
	}

	cl, callErr := c.prepare(svc)
	if callErr != nil {
		c.capture(ctx, string(svc.method()), "", callErr)
		return nil, callErr
	}

	cacheable := c.cache != nil && cl.method == http.MethodGet && !svc.NoCache
	if cacheable {
		if data := c.fromCache(ctx, cl.url); data != nil {
			return decodeCached[T](ctx, c, cl, svc, data)
		}
	}

	machine := retry.NewMachine(c.retryPolicy)
	for {
		resp, attemptErr := c.attempt(ctx, cl)

		var result *Result[T]
		if attemptErr == nil {
			result, attemptErr = decodeResult[T](cl, svc, resp.Body)
			if result != nil {
				result.StatusCode = resp.StatusCode
			}
		}

		if attemptErr == nil {
			if cacheable {
				c.store(ctx, cl.url, resp.Body, svc)
			}
			return result, nil
		}

		decision := machine.Next(attemptErr)
		if !decision.Retries() {
			c.capture(ctx, cl.method, cl.url, attemptErr)
			return nil, attemptErr
		}

		if c.logger != nil {
			c.logger.Warn("Retrying request",
				"method", cl.method,
				"url", logging.SanitizeURL(cl.url),
				"attempt", machine.Attempt()+1,
				"action", decision.Action.String(),
				"delay", machine.Delay(),
				"error", attemptErr)
		}

		if err := machine.Wait(ctx); err != nil {
			waitErr := transport.ClassifyError(ctx, err, false)
			c.capture(ctx, cl.method, cl.url, waitErr)
			return nil, waitErr
		}
	}
}

// prepare resolves the URL and encodes the body
func (c *Client) prepare(svc *Service) (*call, *Error) {
	method := svc.method()
	if !method.Valid() {
		return nil, NewError(KindInvalidRequest, "unsupported method "+string(method))
	}

	rawURL, err := svc.URL(c.baseURL)
	if err != nil {
		return nil, types.AsError(err)
	}

	cl := &call{
		method: string(method),
		url:    rawURL,
	}

	switch {
	case svc.Multipart != nil:
		data, contentType, err := body.EncodeMultipart(svc.Multipart, body.Boundary())
		if err != nil {
			return nil, WrapError(KindInvalidRequest, err, "failed to encode multipart body")
		}
		cl.body = data
		cl.multipart = true
		cl.headers.Set("Content-Type", contentType)

	case svc.Body != nil:
		data, err := body.Encode(*svc.Body)
		if err != nil {
			return nil, WrapError(KindInvalidRequest, err, "failed to encode body")
		}
		cl.body = data
		cl.headers.Set("Content-Type", types.ContentTypeJSON)
	}

	cl.headers.Merge(svc.Headers)
	return cl, nil
}

// effectiveHeaders composes shared defaults, the session Authorization header
// and the call's own headers, in that order. Uploads send only their own.
func (c *Client) effectiveHeaders(ctx context.Context, cl *call) http.Header {
	var h Header
	if !cl.multipart {
		h = c.DefaultHeaders()
		if s, ok := c.currentSession(ctx); ok && s.AccessToken != "" {
			h.Set("Authorization", "Bearer "+s.AccessToken)
		}
	}
	h.Merge(cl.headers)

	out := h.toHTTP()
	out.Set(RequestIDHeader, uuid.NewString())
	return out
}

// attempt performs one dispatch and classifies its outcome
func (c *Client) attempt(ctx context.Context, cl *call) (*Response, *Error) {
	if c.reachability != nil && !c.reachability.Reachable() {
		return nil, NewError(KindNoInternetConnection, "network is not reachable")
	}

	if c.options.RateLimiter != nil {
		if err := c.options.RateLimiter.Wait(ctx); err != nil {
			return nil, transport.ClassifyError(ctx, errors.Wrap(err, "rate limiter"), false)
		}
	}

	req := &Request{
		Method:  cl.method,
		URL:     cl.url,
		Header:  c.effectiveHeaders(ctx, cl),
		Body:    cl.body,
		Timeout: c.options.Timeout,
	}

	resp, err := c.transport.Send(ctx, req)
	if err != nil {
		return nil, transport.ClassifyError(ctx, err, cl.multipart)
	}

	if c.logger != nil {
		c.logger.Debug("Response received",
			"method", cl.method,
			"url", logging.SanitizeURL(cl.url),
			"status", resp.StatusCode,
			"bytes", len(resp.Body))
	}

	if statusErr := transport.ClassifyStatus(resp.StatusCode, resp.Body); statusErr != nil {
		return resp, statusErr
	}
	return resp, nil
}

func decodeResult[T any](cl *call, svc *Service, raw []byte) (*Result[T], *Error) {
	payload, err := decoder.Decode[T](raw, svc.KeyPaths, svc.Shape)
	if err != nil {
		return nil, types.AsError(err)
	}
	return &Result[T]{
		Object:    payload.Object,
		Objects:   payload.Objects,
		RawJSON:   raw,
		SourceURL: cl.url,
	}, nil
}

func (c *Client) fromCache(ctx context.Context, key string) []byte {
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) && c.logger != nil {
			c.logger.Warn("Cache read failed", "url", logging.SanitizeURL(key), "error", err)
		}
		return nil
	}
	return data
}

// decodeCached decodes a cached body. A body that no longer decodes into T is
// reported like a fresh response would be.
func decodeCached[T any](ctx context.Context, c *Client, cl *call, svc *Service, data []byte) (*Result[T], *Error) {
	result, err := decodeResult[T](cl, svc, data)
	if err != nil {
		c.capture(ctx, cl.method, cl.url, err)
		return nil, err
	}
	result.FromCache = true

	if c.logger != nil {
		c.logger.Debug("Cache hit", "url", logging.SanitizeURL(cl.url))
	}
	return result, nil
}

func (c *Client) store(ctx context.Context, key string, data []byte, svc *Service) {
	expireAt := cache.ExpireAfter(c.now(), svc.CacheExpiry)
	if err := c.cache.Set(ctx, key, data, expireAt); err != nil && c.logger != nil {
		c.logger.Warn("Cache write failed", "url", logging.SanitizeURL(key), "error", err)
	}
}

// capture reports a terminal error to Sentry
func (c *Client) capture(ctx context.Context, method, rawURL string, err *Error) {
	if c.logger != nil {
		c.logger.Error("Request failed", "method", method, "url", logging.SanitizeURL(rawURL), "kind", err.Kind, "status", err.StatusCode)
	}

	tag := func(scope *sentry.Scope) {
		scope.SetTag("http.method", method)
		scope.SetTag("http.url", logging.SanitizeURL(rawURL))
		scope.SetTag("error.kind", string(err.Kind))
		if err.StatusCode != 0 {
			scope.SetContext("http", map[string]interface{}{
				"status": err.StatusCode,
			})
		}
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			tag(scope)
			hub.CaptureException(err)
		})
	} else {
		sentry.WithScope(func(scope *sentry.Scope) {
			tag(scope)
			sentry.CaptureException(err)
		})
	}
}
