package restcore

import (
	"context"
	"io"
	"io/fs"

	"github.com/eshaffer321/restcore-go/internal/backoff"
	"github.com/eshaffer321/restcore-go/internal/body"
	"github.com/eshaffer321/restcore-go/internal/cache"
	"github.com/eshaffer321/restcore-go/internal/connectivity"
	"github.com/eshaffer321/restcore-go/internal/logging"
	"github.com/eshaffer321/restcore-go/internal/pinning"
	"github.com/eshaffer321/restcore-go/internal/retry"
	"github.com/eshaffer321/restcore-go/internal/transport"
	"github.com/eshaffer321/restcore-go/internal/types"
)

// Shared types
type (
	Session = types.Session
	Logger  = types.Logger
	Hooks   = types.Hooks

	Request  = transport.Request
	Response = transport.Response
)

// Request bodies
type (
	Value     = body.Value
	Multipart = body.Multipart
	File      = body.File
)

var (
	Null     = body.Null
	Bool     = body.Bool
	String   = body.String
	Int      = body.Int
	Float    = body.Float
	Array    = body.Array
	Object   = body.Object
	Optional = body.Optional
	FromJSON = body.FromJSON
	FromAny  = body.FromAny
)

// Retry
type (
	RetryPolicy   = retry.Policy
	RetryDecision = retry.Decision
	RetryAction   = retry.Action
	BackoffConfig = backoff.Config
)

const (
	ActionDoNotRetry                  = retry.ActionDoNotRetry
	ActionRetry                       = retry.ActionRetry
	ActionRetryWithDelay              = retry.ActionRetryWithDelay
	ActionRetryWithExponentialBackoff = retry.ActionRetryWithExponentialBackoff
)

var (
	DefaultRetryPolicy          = retry.DefaultPolicy
	NoRetry                     = retry.NoRetry
	DoNotRetry                  = retry.DoNotRetry
	Retry                       = retry.Retry
	RetryWithDelay              = retry.RetryWithDelay
	RetryWithExponentialBackoff = retry.RetryWithExponentialBackoff
	IsTransient                 = retry.IsTransient
	DefaultBackoff              = backoff.Default
)

// Caching
type (
	CacheStore  = cache.Store
	MemoryCache = cache.Memory
	RedisCache  = cache.Redis
	RedisConfig = cache.RedisConfig
)

// ErrCacheMiss is returned by cache stores for absent or expired keys
var ErrCacheMiss = cache.ErrCacheMiss

// NewMemoryCache creates an in-process cache
func NewMemoryCache() *MemoryCache {
	return cache.NewMemory()
}

// NewRedisCache connects a cache shared through Redis
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	return cache.NewRedis(ctx, cfg)
}

// Certificate pinning
type (
	TrustEvaluator = pinning.TrustEvaluator
	TrustDecision  = pinning.Decision
	PinValidator   = pinning.Validator
)

const (
	TrustNoOpinion = pinning.NoOpinion
	TrustAccept    = pinning.Accept
	TrustReject    = pinning.Reject
)

// ErrPinMismatch is the TLS failure cause when no pinned certificate matches
var ErrPinMismatch = pinning.ErrPinMismatch

// NewPinValidator pins hosts to DER encoded certificates
func NewPinValidator(pins map[string][][]byte) *PinValidator {
	return pinning.NewValidator(pins)
}

// LoadPinValidator pins hosts to named certificate files under dir in fsys
func LoadPinValidator(fsys fs.FS, dir string, resources map[string][]string) (*PinValidator, error) {
	return pinning.Load(fsys, dir, resources)
}

// Connectivity
type Monitor = connectivity.Monitor

// NewMonitor creates a reachability monitor
func NewMonitor(reachable bool) *Monitor {
	return connectivity.NewMonitor(reachable)
}

// NewLogger creates a leveled logger writing to w
func NewLogger(w io.Writer, level string) Logger {
	return logging.NewLogger(w, level)
}
