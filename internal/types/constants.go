package types

import (
	"time"
)

const (
	// DefaultTimeout is the per-attempt dispatch timeout
	DefaultTimeout = 30 * time.Second

	// UserAgent is the user agent string
	UserAgent = "restcore-go/1.0.0"

	// ContentTypeJSON is the content type of encoded request bodies
	ContentTypeJSON = "application/json"

	// RefreshWindow is how long before expiry a session should be refreshed
	RefreshWindow = 5 * time.Minute
)
