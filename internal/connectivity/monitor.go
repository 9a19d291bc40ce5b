// Package connectivity tracks whether the network is currently reachable.
package connectivity

import (
	"context"
	"net"
	"sync"
	"time"
)

// Monitor holds the current reachability and notifies subscribers of changes
type Monitor struct {
	mu          sync.Mutex
	reachable   bool
	nextID      int
	subscribers map[int]func(bool)
}

// NewMonitor creates a monitor with an initial reachability
func NewMonitor(reachable bool) *Monitor {
	return &Monitor{
		reachable:   reachable,
		subscribers: make(map[int]func(bool)),
	}
}

// Reachable returns the current reachability
func (m *Monitor) Reachable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reachable
}

// Set updates reachability and notifies subscribers if it changed.
// Subscribers are called outside the lock.
func (m *Monitor) Set(reachable bool) {
	m.mu.Lock()
	if m.reachable == reachable {
		m.mu.Unlock()
		return
	}
	m.reachable = reachable

	subs := make([]func(bool), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(reachable)
	}
}

// Subscribe registers fn for change notifications and returns a function
// that removes it
func (m *Monitor) Subscribe(fn func(bool)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subscribers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

// Probe dials addr every interval and updates the monitor until ctx ends
func (m *Monitor) Probe(ctx context.Context, addr string, interval, timeout time.Duration) {
	dialer := &net.Dialer{Timeout: timeout}

	check := func() {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			if ctx.Err() == nil {
				m.Set(false)
			}
			return
		}
		_ = conn.Close()
		m.Set(true)
	}

	check()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
