package cache

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestMemory() (*Memory, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewMemory()
	m.now = clock.Now
	return m, clock
}

func TestMemory_RoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestMemory()

	key := "https://api.example.com/items"
	require.NoError(t, m.Set(ctx, key, []byte(`{"a":1}`), clock.Now().Add(time.Hour)))

	data, err := m.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), data)

	clock.Advance(time.Hour + time.Second)

	_, err = m.Get(ctx, key)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 0, m.Len(), "expired entry should be evicted on read")
}

func TestMemory_ExactExpiryInstantStillReadable(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestMemory()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), clock.Now().Add(time.Minute)))
	clock.Advance(time.Minute)

	_, err := m.Get(ctx, "k")
	assert.NoError(t, err)
}

func TestMemory_NoExpiry(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestMemory()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Time{}))
	clock.Advance(24 * 365 * time.Hour)

	data, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), data)
}

func TestMemory_Miss(t *testing.T) {
	m, _ := newTestMemory()
	_, err := m.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemory_Clear(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMemory()

	for i := 0; i < 5; i++ {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), time.Time{}))
	}
	require.Equal(t, 5, m.Len())

	require.NoError(t, m.Clear(ctx))
	assert.Equal(t, 0, m.Len())
}

func TestMemory_CopiesData(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMemory()

	src := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", src, time.Time{}))
	src[0] = 'z'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'z'
	again, _ := m.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			_ = m.Set(ctx, key, []byte(key), time.Now().Add(time.Minute))
			if data, err := m.Get(ctx, key); err == nil {
				assert.Equal(t, key, string(data))
			}
			if i%10 == 0 {
				_ = m.Clear(ctx)
			}
		}(i)
	}
	wg.Wait()
}

func TestMemory_CancelledContext(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.Set(ctx, "k", []byte("v"), time.Time{}), context.Canceled)
	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExpireAfter(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, ExpireAfter(now, 0).IsZero())
	assert.True(t, ExpireAfter(now, -time.Second).IsZero())
	assert.Equal(t, now.Add(time.Hour), ExpireAfter(now, time.Hour))
}

func redisAddr(t *testing.T) string {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("Skipping Redis integration tests - set REDIS_TEST_ADDR to run")
	}
	return addr
}

func TestNewRedis_RequiresAddress(t *testing.T) {
	store, err := NewRedis(context.Background(), RedisConfig{})
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestRedis_RoundTripAndClear(t *testing.T) {
	addr := redisAddr(t)
	ctx := context.Background()

	store, err := NewRedis(ctx, RedisConfig{Addr: addr, Prefix: "restcore-test:"})
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Clear(ctx))

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Now().Add(time.Minute)))
	data, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), data)

	require.NoError(t, store.Clear(ctx))
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedis_PastExpiryIsNotStored(t *testing.T) {
	addr := redisAddr(t)
	ctx := context.Background()

	store, err := NewRedis(ctx, RedisConfig{Addr: addr, Prefix: "restcore-test:"})
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(ctx, "stale", []byte("v"), time.Now().Add(-time.Second)))
	_, err = store.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
