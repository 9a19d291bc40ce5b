// Package config loads restcall configuration from YAML files and the environment.
package config

import (
	"net/url"
	"os"
	"time"

	"github.com/eshaffer321/restcore-go/internal/backoff"
	"github.com/eshaffer321/restcore-go/internal/cache"
	"github.com/eshaffer321/restcore-go/internal/pinning"
	"github.com/eshaffer321/restcore-go/internal/retry"
	"github.com/eshaffer321/restcore-go/internal/types"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values
const (
	EnvToken   = "RESTCORE_TOKEN"
	EnvBaseURL = "RESTCORE_BASE_URL"
)

// Cache backends
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config is the on-disk configuration
type Config struct {
	BaseURL     string            `yaml:"base_url"`
	Token       string            `yaml:"token"`
	Timeout     time.Duration     `yaml:"timeout"`
	Headers     map[string]string `yaml:"headers"`
	SessionFile string            `yaml:"session_file"`
	Retry       RetryConfig       `yaml:"retry"`
	Pins        PinsConfig        `yaml:"pins"`
	Cache       CacheConfig       `yaml:"cache"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Log         LogConfig         `yaml:"log"`
}

// RetryConfig bounds retries of transient failures
type RetryConfig struct {
	MaxRetries int            `yaml:"max_retries"`
	Backoff    backoff.Config `yaml:"backoff"`
}

// PinsConfig maps hosts to certificate files under CertDir
type PinsConfig struct {
	CertDir string              `yaml:"cert_dir"`
	Hosts   map[string][]string `yaml:"hosts"`
}

// CacheConfig selects the response cache backend
type CacheConfig struct {
	Backend string            `yaml:"backend"`
	Expiry  time.Duration     `yaml:"expiry"`
	Redis   cache.RedisConfig `yaml:"redis"`
}

// RateLimitConfig limits outgoing attempts. RPS of zero disables limiting.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// LogConfig sets the log level
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Timeout: types.DefaultTimeout,
		Headers: map[string]string{},
		Retry: RetryConfig{
			MaxRetries: 3,
			Backoff:    backoff.Default(),
		},
		Cache: CacheConfig{
			Backend: CacheMemory,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config file %s", path)
		}
	}

	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides the token and base URL from the environment
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvToken); v != "" {
		c.Token = v
	}
	if v := getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
}

// Validate checks the configuration for values the client cannot use
func (c *Config) Validate() error {
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.Errorf("invalid base_url %q", c.BaseURL)
		}
	}
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if c.Retry.MaxRetries < 0 {
		return errors.New("retry.max_retries must not be negative")
	}
	if c.Retry.Backoff.Base < 1 {
		return errors.New("retry.backoff.base must be at least 1")
	}

	switch c.Cache.Backend {
	case "", CacheMemory, CacheNone:
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			return errors.New("cache.redis.addr is required for the redis backend")
		}
	default:
		return errors.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	if c.RateLimit.RPS < 0 {
		return errors.New("rate_limit.rps must not be negative")
	}
	if len(c.Pins.Hosts) > 0 && c.Pins.CertDir == "" {
		return errors.New("pins.cert_dir is required when hosts are pinned")
	}
	return nil
}

// RetryPolicy builds the retry policy described by the configuration
func (c *Config) RetryPolicy() *retry.Policy {
	cfg := c.Retry.Backoff
	return &retry.Policy{
		MaxRetries: c.Retry.MaxRetries,
		Decide: func(err *types.Error, attempt int) retry.Decision {
			if retry.IsTransient(err) {
				return retry.RetryWithExponentialBackoff(cfg)
			}
			return retry.DoNotRetry()
		},
	}
}

// RateLimiter returns a limiter, or nil when limiting is disabled
func (c *Config) RateLimiter() *rate.Limiter {
	if c.RateLimit.RPS <= 0 {
		return nil
	}
	burst := c.RateLimit.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(c.RateLimit.RPS), burst)
}

// PinValidator loads pinned certificates, or returns nil when nothing is pinned
func (c *Config) PinValidator() (*pinning.Validator, error) {
	if len(c.Pins.Hosts) == 0 {
		return nil, nil
	}
	v, err := pinning.Load(os.DirFS(c.Pins.CertDir), ".", c.Pins.Hosts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load pinned certificates")
	}
	return v, nil
}
