// Package cache stores raw response bodies keyed by request URL.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key is absent or expired
var ErrCacheMiss = errors.New("cache: key not found")

// Store is an expiring byte store. Implementations serialize access so that
// Get, Set and Clear are linearizable, and never return an entry past its
// expiry.
type Store interface {
	// Get returns the data stored under key, or ErrCacheMiss
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores data under key. A zero expireAt never expires.
	Set(ctx context.Context, key string, data []byte, expireAt time.Time) error

	// Clear drops every entry
	Clear(ctx context.Context) error
}

// ExpireAfter converts a relative expiry into an absolute one.
// Zero or negative ttl means never.
func ExpireAfter(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}
