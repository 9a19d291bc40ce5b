package transport

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/eshaffer321/restcore-go/internal/logging"
	"github.com/eshaffer321/restcore-go/internal/pinning"
	"github.com/eshaffer321/restcore-go/internal/types"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

// Request is a single dispatch
type Request struct {
	Method  string
	URL     string
	Header  http.Header
	Body    []byte
	Timeout time.Duration
}

// Response is the raw outcome of a dispatch
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Duration   time.Duration
}

// HTTPTransport sends requests over net/http. It performs exactly one
// attempt per Send; retries belong to the caller.
type HTTPTransport struct {
	client     *retryablehttp.Client
	httpClient *http.Client
	timeout    time.Duration
	logger     types.Logger
	hooks      *types.Hooks
}

// Options for HTTP transport
type Options struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	TLSConfig  *tls.Config
	Trust      pinning.TrustEvaluator
	Logger     types.Logger
	Hooks      *types.Hooks
}

// ErrTrustUnsupported is returned when a trust evaluator is configured but the
// supplied client's round tripper cannot carry the TLS hook
var ErrTrustUnsupported = errors.New("trust evaluator requires an *http.Transport round tripper")

// NewHTTPTransport creates a new HTTP transport
func NewHTTPTransport(opts *Options) (*HTTPTransport, error) {
	if opts == nil {
		opts = &Options{}
	}

	// Set defaults
	if opts.Timeout <= 0 {
		opts.Timeout = types.DefaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: newRoundTripper(opts.TLSConfig, opts.Trust),
		}
	} else if opts.Trust != nil {
		pinned, err := withTrust(httpClient, opts.Trust)
		if err != nil {
			return nil, err
		}
		httpClient = pinned
	}

	client := retryablehttp.NewClient()
	client.HTTPClient = httpClient
	client.RetryMax = 0
	client.CheckRetry = noRetry
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = nil

	if opts.Logger != nil {
		client.Logger = &retryLogger{logger: opts.Logger}
		client.RequestLogHook = func(l retryablehttp.Logger, req *http.Request, attempt int) {
			opts.Logger.Debug("HTTP request", "request", logging.RequestRecord(req, nil))
		}
		client.ResponseLogHook = func(l retryablehttp.Logger, resp *http.Response) {
			opts.Logger.Debug("HTTP response", "response", logging.ResponseRecord(resp, nil))
		}
	}

	return &HTTPTransport{
		client:     client,
		httpClient: httpClient,
		timeout:    opts.Timeout,
		logger:     opts.Logger,
		hooks:      opts.Hooks,
	}, nil
}

// Send performs one HTTP exchange bounded by the per-attempt timeout
func (t *HTTPTransport) Send(ctx context.Context, req *Request) (*Response, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = t.timeout
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Create HTTP request
	var rawBody interface{}
	if req.Body != nil {
		rawBody = req.Body
	}
	httpReq, err := retryablehttp.NewRequestWithContext(attemptCtx, req.Method, req.URL, rawBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	// Set headers
	for k, v := range req.Header {
		httpReq.Header[k] = append([]string(nil), v...)
	}

	// Call request hook
	if t.hooks != nil && t.hooks.OnRequest != nil {
		t.hooks.OnRequest(ctx, httpReq.Request)
	}

	// Execute request
	start := time.Now()
	resp, err := t.client.Do(httpReq)
	duration := time.Since(start)

	if err != nil {
		if t.hooks != nil && t.hooks.OnError != nil {
			t.hooks.OnError(ctx, err)
		}
		return nil, errors.Wrapf(err, "%s %s", req.Method, logging.SanitizeURL(req.URL))
	}
	defer resp.Body.Close()

	// Call response hook
	if t.hooks != nil && t.hooks.OnResponse != nil {
		t.hooks.OnResponse(ctx, resp, duration)
	}

	// Read response
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ReadError{Err: errors.Wrap(err, "failed to read response")}
	}

	if t.logger != nil {
		t.logger.Debug("HTTP exchange", "status", resp.StatusCode, "duration", duration, "size", len(respBody))
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
		Duration:   duration,
	}, nil
}

// ReadError marks a failure while reading a response body
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string { return e.Err.Error() }
func (e *ReadError) Unwrap() error { return e.Err }

// noRetry stops retryablehttp after the first attempt
func noRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return false, nil
}

func newRoundTripper(base *tls.Config, trust pinning.TrustEvaluator) *http.Transport {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if base != nil {
		tlsConfig = base.Clone()
	}

	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	rt := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		TLSClientConfig:       tlsConfig,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if trust != nil {
		pin(rt, dialer, trust)
	}
	return rt
}

// withTrust installs the trust hook on a copy of a caller supplied client.
// Wrapped round trippers are refused since pinning could not be enforced.
func withTrust(c *http.Client, trust pinning.TrustEvaluator) (*http.Client, error) {
	copied := *c

	base, ok := c.Transport.(*http.Transport)
	if c.Transport == nil {
		base, ok = http.DefaultTransport.(*http.Transport)
	}
	if !ok {
		return nil, errors.Wrapf(ErrTrustUnsupported, "got %T", c.Transport)
	}

	rt := base.Clone()
	pin(rt, &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}, trust)
	copied.Transport = rt
	return &copied, nil
}

// pin makes rt complete TLS itself so trust is evaluated against the dialed
// host. Pinned connections never go through a proxy.
func pin(rt *http.Transport, dialer *net.Dialer, trust pinning.TrustEvaluator) {
	if rt.TLSClientConfig == nil {
		rt.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	rt.Proxy = nil
	rt.DialTLSContext = pinning.DialTLSContextFunc(rt.TLSClientConfig, dialer, trust)
}

// retryLogger adapts our logger to retryablehttp
type retryLogger struct {
	logger types.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keysAndValues...)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, keysAndValues...)
}

// Close releases idle connections
func (t *HTTPTransport) Close() {
	t.httpClient.CloseIdleConnections()
}
