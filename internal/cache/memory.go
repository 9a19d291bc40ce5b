package cache

import (
	"context"
	"sync"
	"time"
)

// entry is a cached response body
type entry struct {
	data     []byte
	expireAt time.Time // zero => no expiry
}

func (e *entry) expired(now time.Time) bool {
	return !e.expireAt.IsZero() && e.expireAt.Before(now)
}

// Memory is an in-process Store guarded by a single mutex
type Memory struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Get returns a copy of the stored data, evicting the entry if it expired
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	if e.expired(m.now()) {
		delete(m.entries, key)
		return nil, ErrCacheMiss
	}

	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, nil
}

// Set stores a copy of data
func (m *Memory) Set(ctx context.Context, key string, data []byte, expireAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := make([]byte, len(data))
	copy(stored, data)

	m.mu.Lock()
	m.entries[key] = &entry{data: stored, expireAt: expireAt}
	m.mu.Unlock()
	return nil
}

// Clear drops every entry
func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]*entry)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired or not
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
