// Package backoff computes retry delays.
package backoff

import (
	"math"
	"time"
)

// Config describes an exponential backoff curve
type Config struct {
	// BaseDelay is the delay before the first retry
	BaseDelay time.Duration `json:"baseDelay" yaml:"base_delay"`

	// Base is the growth factor applied per attempt
	Base float64 `json:"base" yaml:"base"`

	// MaxDelay caps the delay. Zero means no cap.
	MaxDelay time.Duration `json:"maxDelay" yaml:"max_delay"`
}

// Default returns 1s doubling up to 30s
func Default() Config {
	return Config{
		BaseDelay: time.Second,
		Base:      2.0,
		MaxDelay:  30 * time.Second,
	}
}

// Delay returns min(BaseDelay * Base^attempt, MaxDelay) for a zero-based attempt
func (c Config) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	d := float64(c.BaseDelay) * math.Pow(c.Base, float64(attempt))

	limit := float64(math.MaxInt64)
	if c.MaxDelay > 0 {
		limit = float64(c.MaxDelay)
	}
	if math.IsNaN(d) || d >= limit {
		if c.MaxDelay > 0 {
			return c.MaxDelay
		}
		return time.Duration(math.MaxInt64)
	}
	if d < 0 {
		return 0
	}
	return time.Duration(d)
}
