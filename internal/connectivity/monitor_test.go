package connectivity

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_SetNotifiesOnChange(t *testing.T) {
	m := NewMonitor(true)

	var got []bool
	cancel := m.Subscribe(func(r bool) { got = append(got, r) })

	m.Set(true)
	m.Set(false)
	m.Set(false)
	m.Set(true)

	assert.Equal(t, []bool{false, true}, got)
	assert.True(t, m.Reachable())

	cancel()
	m.Set(false)
	assert.Len(t, got, 2)
	assert.False(t, m.Reachable())
}

func TestMonitor_SubscriberMayReadState(t *testing.T) {
	m := NewMonitor(true)
	done := make(chan bool, 1)
	m.Subscribe(func(bool) { done <- m.Reachable() })

	m.Set(false)
	assert.False(t, <-done)
}

func TestMonitor_Probe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	m := NewMonitor(false)

	var mu sync.Mutex
	var changes []bool
	m.Subscribe(func(r bool) {
		mu.Lock()
		changes = append(changes, r)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Probe(ctx, addr, 20*time.Millisecond, 100*time.Millisecond)

	require.Eventually(t, m.Reachable, time.Second, 10*time.Millisecond)

	ln.Close()
	require.Eventually(t, func() bool { return !m.Reachable() }, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, false}, changes[:2])
}
