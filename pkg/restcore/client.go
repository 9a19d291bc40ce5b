package restcore

import (
	"context"
	"crypto/tls"
	"net/http"
	"sync"
	"time"

	"github.com/eshaffer321/restcore-go/internal/cache"
	"github.com/eshaffer321/restcore-go/internal/retry"
	"github.com/eshaffer321/restcore-go/internal/session"
	"github.com/eshaffer321/restcore-go/internal/transport"
	"github.com/eshaffer321/restcore-go/internal/types"
	"github.com/getsentry/sentry-go"
)

const (
	// DefaultTimeout bounds each dispatch attempt
	DefaultTimeout = types.DefaultTimeout

	// UserAgent is the default user agent string
	UserAgent = types.UserAgent
)

// Client runs service calls through the request pipeline
type Client struct {
	baseURL      string
	transport    Transport
	httpTrans    *transport.HTTPTransport
	options      *ClientOptions
	logger       Logger
	cache        CacheStore
	retryPolicy  *RetryPolicy
	reachability Reachability
	sessions     *session.Store
	now          func() time.Time

	mu      sync.RWMutex
	headers Header

	refreshMu sync.Mutex
}

// ClientOptions configures the client
type ClientOptions struct {
	// BaseURL is used by services that do not set their own
	BaseURL string

	// HTTPClient allows using a custom HTTP client
	HTTPClient *http.Client

	// Timeout bounds each attempt. Defaults to DefaultTimeout.
	Timeout time.Duration

	// TLSConfig is the base TLS configuration of the default transport
	TLSConfig *tls.Config

	// Headers are the initial shared default headers
	Headers Header

	// Token sets a session with only an access token
	Token string

	// Session is the initial session
	Session *Session

	// SessionFile path for session persistence
	SessionFile string

	// RefreshSession renews a session that is about to expire
	RefreshSession func(ctx context.Context, s Session) (Session, error)

	// Logger for debug logging
	Logger Logger

	// RetryPolicy decides whether failed attempts are retried.
	// Defaults to DefaultRetryPolicy.
	RetryPolicy *RetryPolicy

	// RateLimiter for rate limiting
	RateLimiter RateLimiter

	// Cache stores GET responses. Defaults to an in-memory cache.
	Cache CacheStore

	// DisableCache turns response caching off for every call
	DisableCache bool

	// Trust evaluates server certificate chains, e.g. a PinValidator. It needs
	// the default transport or an HTTPClient backed by *http.Transport.
	Trust TrustEvaluator

	// Reachability short-circuits attempts while the network is down
	Reachability Reachability

	// Hooks for observability
	Hooks *Hooks

	// Transport replaces the HTTP transport
	Transport Transport

	// SentryDSN enables Sentry error tracking when set
	SentryDSN string

	// SentryOptions allows custom Sentry configuration
	SentryOptions *sentry.ClientOptions
}

// RateLimiter interface for rate limiting
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// Reachability reports whether the network is currently reachable
type Reachability interface {
	Reachable() bool
}

// Transport performs a single HTTP exchange
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// NewClient creates a new client
func NewClient(opts *ClientOptions) (*Client, error) {
	if opts == nil {
		opts = &ClientOptions{}
	}

	// Initialize Sentry if DSN is provided
	if opts.SentryDSN != "" || opts.SentryOptions != nil {
		sentryOpts := sentry.ClientOptions{}

		if opts.SentryOptions != nil {
			sentryOpts = *opts.SentryOptions
		}

		if opts.SentryDSN != "" {
			sentryOpts.Dsn = opts.SentryDSN
		}

		if sentryOpts.Environment == "" {
			sentryOpts.Environment = "production"
		}

		if err := sentry.Init(sentryOpts); err != nil {
			// Log error but don't fail client creation
			if opts.Logger != nil {
				opts.Logger.Error("Failed to initialize Sentry", "error", err)
			}
		}
	}

	c := &Client{
		baseURL:      opts.BaseURL,
		options:      opts,
		logger:       opts.Logger,
		retryPolicy:  opts.RetryPolicy,
		reachability: opts.Reachability,
		sessions:     session.NewStore(opts.SessionFile, opts.Logger),
		now:          time.Now,
	}

	if c.retryPolicy == nil {
		c.retryPolicy = retry.DefaultPolicy()
	}

	if !opts.DisableCache {
		c.cache = opts.Cache
		if c.cache == nil {
			c.cache = cache.NewMemory()
		}
	}

	c.transport = opts.Transport
	if c.transport == nil {
		httpTrans, err := transport.NewHTTPTransport(&transport.Options{
			HTTPClient: opts.HTTPClient,
			Timeout:    opts.Timeout,
			TLSConfig:  opts.TLSConfig,
			Trust:      opts.Trust,
			Logger:     opts.Logger,
			Hooks:      opts.Hooks,
		})
		if err != nil {
			return nil, WrapError(KindInvalidRequest, err, "failed to configure transport")
		}
		c.httpTrans = httpTrans
		c.transport = httpTrans
	} else if opts.Trust != nil {
		return nil, NewError(KindInvalidRequest, "Trust cannot be combined with a custom Transport")
	}

	c.headers = NewHeader("User-Agent", UserAgent, "Accept", types.ContentTypeJSON)
	c.headers.Merge(opts.Headers)

	// Load session if file specified
	if opts.SessionFile != "" {
		if err := c.sessions.Load(opts.SessionFile); err != nil && opts.Logger != nil {
			opts.Logger.Warn("Failed to load session", "error", err)
		}
	}

	if opts.Session != nil {
		c.setSession(*opts.Session)
	} else if opts.Token != "" {
		c.setSession(Session{AccessToken: opts.Token})
	}

	return c, nil
}

// NewClientWithToken creates a client for baseURL authenticated with a bearer token
func NewClientWithToken(baseURL, token string) (*Client, error) {
	return NewClient(&ClientOptions{
		BaseURL: baseURL,
		Token:   token,
	})
}

// SetDefaultHeader sets a header sent with every non-upload call
func (c *Client) SetDefaultHeader(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers.Set(name, value)
}

// DeleteDefaultHeader removes a shared default header
func (c *Client) DeleteDefaultHeader(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers.Del(name)
}

// DefaultHeaders returns a snapshot of the shared default headers
func (c *Client) DefaultHeaders() Header {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Header{fields: c.headers.Fields()}
}

// SetSession replaces the current session, persisting it if a session file
// is configured
func (c *Client) SetSession(s Session) error {
	return c.sessions.Set(s)
}

// SetToken sets a session holding only an access token
func (c *Client) SetToken(token string) error {
	return c.sessions.Set(Session{AccessToken: token})
}

// GetSession returns the current session, if any
func (c *Client) GetSession() (Session, bool) {
	s, err := c.sessions.Get()
	return s, err == nil
}

// ClearSession forgets the current session and removes the session file
func (c *Client) ClearSession() error {
	return c.sessions.Clear()
}

// ClearCache removes every cached response
func (c *Client) ClearCache(ctx context.Context) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Clear(ctx)
}

// Close flushes any pending Sentry events and performs cleanup
func (c *Client) Close() {
	if c.httpTrans != nil {
		c.httpTrans.Close()
	}

	// Flush Sentry events with a 2 second timeout
	sentry.Flush(2 * time.Second)
}

func (c *Client) setSession(s Session) {
	if err := c.sessions.Set(s); err != nil && c.logger != nil {
		c.logger.Warn("Failed to save session", "error", err)
	}
}

// currentSession returns the session to authorize an attempt with, refreshing
// it first when it is close to expiry
func (c *Client) currentSession(ctx context.Context) (Session, bool) {
	s, err := c.sessions.Get()
	if err != nil {
		return Session{}, false
	}
	if c.options.RefreshSession == nil || !s.ShouldRefresh(c.now()) {
		return s, true
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// Another call may have refreshed while we waited
	s, err = c.sessions.Get()
	if err != nil {
		return Session{}, false
	}
	if !s.ShouldRefresh(c.now()) {
		return s, true
	}

	refreshed, err := c.options.RefreshSession(ctx, s)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("Session refresh failed", "error", err)
		}
		return s, true
	}

	c.setSession(refreshed)
	if c.logger != nil {
		c.logger.Debug("Session refreshed", "user", refreshed.UserID, "expires", refreshed.ExpiresAt)
	}
	return refreshed, true
}
