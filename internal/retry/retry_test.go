package retry

import (
	"context"
	"testing"
	"time"

	"github.com/eshaffer321/restcore-go/internal/backoff"
	"github.com/eshaffer321/restcore-go/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alwaysRetry(err *types.Error, attempt int) Decision {
	return Retry()
}

func TestMachine_StopsAfterMaxRetries(t *testing.T) {
	kinds := []types.ErrorKind{
		types.KindNetworkError,
		types.KindServerError,
		types.KindClientError,
		types.KindParseError,
	}

	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			m := NewMachine(&Policy{MaxRetries: 3, Decide: alwaysRetry})
			ctx := context.Background()

			granted := 0
			for i := 0; i < 10; i++ {
				d := m.Next(&types.Error{Kind: kind})
				if !d.Retries() {
					break
				}
				granted++
				require.NoError(t, m.Wait(ctx))
			}

			assert.Equal(t, 3, granted)
			assert.Equal(t, StateStopped, m.State())
		})
	}
}

func TestMachine_StateTransitions(t *testing.T) {
	m := NewMachine(&Policy{MaxRetries: 1, Decide: alwaysRetry})
	assert.Equal(t, StateNotStarted, m.State())

	failure := &types.Error{Kind: types.KindNetworkError}
	d := m.Next(failure)
	assert.Equal(t, ActionRetry, d.Action)
	assert.Equal(t, StateDeciding, m.State())
	assert.Same(t, failure, m.LastError())

	require.NoError(t, m.Wait(context.Background()))
	assert.Equal(t, StateRetrying, m.State())
	assert.Equal(t, 1, m.Attempt())

	d = m.Next(failure)
	assert.Equal(t, ActionDoNotRetry, d.Action)
	assert.Equal(t, StateStopped, m.State())
}

func TestMachine_NilPolicyNeverRetries(t *testing.T) {
	m := NewMachine(nil)
	assert.False(t, m.Next(&types.Error{Kind: types.KindNetworkError}).Retries())
}

func TestMachine_DecideReceivesAttempt(t *testing.T) {
	var seen []int
	m := NewMachine(&Policy{
		MaxRetries: 3,
		Decide: func(err *types.Error, attempt int) Decision {
			seen = append(seen, attempt)
			return Retry()
		},
	})

	for m.Next(&types.Error{Kind: types.KindServerError}).Retries() {
		require.NoError(t, m.Wait(context.Background()))
	}

	assert.Equal(t, []int{0, 1, 2}, seen)
}

func TestMachine_WaitHonoursContext(t *testing.T) {
	m := NewMachine(&Policy{
		MaxRetries: 1,
		Decide: func(err *types.Error, attempt int) Decision {
			return RetryWithDelay(time.Hour)
		},
	})
	m.Next(&types.Error{Kind: types.KindNetworkError})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateStopped, m.State())
}

func TestDecision_Wait(t *testing.T) {
	cfg := backoff.Config{BaseDelay: 100 * time.Millisecond, Base: 2, MaxDelay: time.Second}

	assert.Equal(t, time.Duration(0), Retry().Wait(4))
	assert.Equal(t, 250*time.Millisecond, RetryWithDelay(250*time.Millisecond).Wait(4))
	assert.Equal(t, 400*time.Millisecond, RetryWithExponentialBackoff(cfg).Wait(2))
	assert.Equal(t, time.Second, RetryWithExponentialBackoff(cfg).Wait(8))
	assert.Equal(t, time.Duration(0), DoNotRetry().Wait(1))
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 3, p.MaxRetries)

	tests := []struct {
		name  string
		err   *types.Error
		retry bool
	}{
		{"no connection", &types.Error{Kind: types.KindNoInternetConnection}, true},
		{"network", &types.Error{Kind: types.KindNetworkError}, true},
		{"server", &types.Error{Kind: types.KindServerError, StatusCode: 503}, true},
		{"rate limited", &types.Error{Kind: types.KindClientError, StatusCode: 429}, true},
		{"request timeout", &types.Error{Kind: types.KindClientError, StatusCode: 408}, true},
		{"not found", &types.Error{Kind: types.KindClientError, StatusCode: 404}, false},
		{"parse", &types.Error{Kind: types.KindParseError}, false},
		{"invalid url", &types.Error{Kind: types.KindInvalidURL}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := p.Decide(tt.err, 0)
			assert.Equal(t, tt.retry, d.Retries())
			if tt.retry {
				assert.Equal(t, ActionRetryWithExponentialBackoff, d.Action)
			}
		})
	}
}
