package main

import (
	"context"
	"io"
	"sort"

	"github.com/eshaffer321/restcore-go/internal/config"
	"github.com/eshaffer321/restcore-go/pkg/restcore"
	"github.com/pkg/errors"
)

// loadConfig reads the config file and raises the log level when verbose
func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// newCache builds the configured response cache. A nil store with a nil
// error means caching is off.
func newCache(ctx context.Context, cfg *config.Config) (restcore.CacheStore, error) {
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return nil, nil
	case config.CacheRedis:
		store, err := restcore.NewRedisCache(ctx, cfg.Cache.Redis)
		if err != nil {
			return nil, errors.Wrap(err, "failed to connect to redis cache")
		}
		return store, nil
	default:
		return restcore.NewMemoryCache(), nil
	}
}

// newClient builds a client from the configuration
func newClient(ctx context.Context, cfg *config.Config, logOut io.Writer) (*restcore.Client, error) {
	opts := &restcore.ClientOptions{
		BaseURL:     cfg.BaseURL,
		Timeout:     cfg.Timeout,
		Token:       cfg.Token,
		SessionFile: cfg.SessionFile,
		RetryPolicy: cfg.RetryPolicy(),
		Logger:      restcore.NewLogger(logOut, cfg.Log.Level),
	}

	// Sorted so default headers have a stable order
	names := make([]string, 0, len(cfg.Headers))
	for name := range cfg.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		opts.Headers.Set(name, cfg.Headers[name])
	}

	if limiter := cfg.RateLimiter(); limiter != nil {
		opts.RateLimiter = limiter
	}

	validator, err := cfg.PinValidator()
	if err != nil {
		return nil, err
	}
	if validator != nil {
		opts.Trust = validator
	}

	store, err := newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if store == nil {
		opts.DisableCache = true
	} else {
		opts.Cache = store
	}

	return restcore.NewClient(opts)
}
