// Package retry decides whether a failed call attempt is dispatched again.
package retry

import (
	"net/http"
	"time"

	"github.com/eshaffer321/restcore-go/internal/backoff"
	"github.com/eshaffer321/restcore-go/internal/types"
)

// Action is the outcome of a retry decision
type Action int

const (
	ActionDoNotRetry Action = iota
	ActionRetry
	ActionRetryWithDelay
	ActionRetryWithExponentialBackoff
)

func (a Action) String() string {
	switch a {
	case ActionRetry:
		return "retry"
	case ActionRetryWithDelay:
		return "retryWithDelay"
	case ActionRetryWithExponentialBackoff:
		return "retryWithExponentialBackoff"
	default:
		return "doNotRetry"
	}
}

// Decision tells the pipeline what to do after a failure
type Decision struct {
	Action  Action
	Delay   time.Duration
	Backoff backoff.Config
}

// DoNotRetry surfaces the error to the caller
func DoNotRetry() Decision {
	return Decision{Action: ActionDoNotRetry}
}

// Retry dispatches again immediately
func Retry() Decision {
	return Decision{Action: ActionRetry}
}

// RetryWithDelay dispatches again after d
func RetryWithDelay(d time.Duration) Decision {
	return Decision{Action: ActionRetryWithDelay, Delay: d}
}

// RetryWithExponentialBackoff dispatches again after cfg.Delay(attempt)
func RetryWithExponentialBackoff(cfg backoff.Config) Decision {
	return Decision{Action: ActionRetryWithExponentialBackoff, Backoff: cfg}
}

// Retries reports whether the decision re-dispatches
func (d Decision) Retries() bool {
	return d.Action != ActionDoNotRetry
}

// Wait returns the delay before the next dispatch for a zero-based attempt
func (d Decision) Wait(attempt int) time.Duration {
	switch d.Action {
	case ActionRetryWithDelay:
		return d.Delay
	case ActionRetryWithExponentialBackoff:
		return d.Backoff.Delay(attempt)
	default:
		return 0
	}
}

// DecideFunc maps a failure and zero-based attempt count to a decision
type DecideFunc func(err *types.Error, attempt int) Decision

// Policy bounds retries and supplies the decision function
type Policy struct {
	MaxRetries int
	Decide     DecideFunc
}

// DefaultPolicy retries transient failures up to 3 times with exponential backoff
func DefaultPolicy() *Policy {
	cfg := backoff.Default()
	return &Policy{
		MaxRetries: 3,
		Decide: func(err *types.Error, attempt int) Decision {
			if IsTransient(err) {
				return RetryWithExponentialBackoff(cfg)
			}
			return DoNotRetry()
		},
	}
}

// NoRetry never retries
func NoRetry() *Policy {
	return &Policy{}
}

// IsTransient reports whether err is worth another attempt
func IsTransient(err *types.Error) bool {
	if err == nil {
		return false
	}
	switch err.Kind {
	case types.KindNoInternetConnection, types.KindNetworkError, types.KindServerError:
		return true
	case types.KindClientError:
		return err.StatusCode == http.StatusRequestTimeout || err.StatusCode == http.StatusTooManyRequests
	default:
		return false
	}
}
