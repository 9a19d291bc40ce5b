package retry

import (
	"context"
	"time"

	"github.com/eshaffer321/restcore-go/internal/types"
)

// State is a position in the retry state machine
type State string

const (
	StateNotStarted State = "not_started"
	StateDeciding   State = "deciding"
	StateWaiting    State = "waiting"
	StateRetrying   State = "retrying"
	StateStopped    State = "stopped"
)

// Machine tracks retries for a single logical call. It is not shared
// between calls and is not safe for concurrent use.
type Machine struct {
	policy   *Policy
	state    State
	attempt  int
	lastErr  *types.Error
	decision Decision
}

// NewMachine creates a machine for one call. A nil policy never retries.
func NewMachine(policy *Policy) *Machine {
	if policy == nil {
		policy = NoRetry()
	}
	return &Machine{policy: policy, state: StateNotStarted}
}

// State returns the current state
func (m *Machine) State() State {
	return m.state
}

// Attempt returns the number of retries already granted
func (m *Machine) Attempt() int {
	return m.attempt
}

// LastError returns the most recent failure
func (m *Machine) LastError() *types.Error {
	return m.lastErr
}

// Next records a failure and decides what happens next
func (m *Machine) Next(err *types.Error) Decision {
	m.state = StateDeciding
	m.lastErr = err

	if m.attempt >= m.policy.MaxRetries || m.policy.Decide == nil {
		return m.stop()
	}

	d := m.policy.Decide(err, m.attempt)
	if !d.Retries() {
		return m.stop()
	}

	m.decision = d
	return d
}

// Delay returns the wait for the pending decision
func (m *Machine) Delay() time.Duration {
	return m.decision.Wait(m.attempt)
}

// Wait sleeps for the pending decision's delay and moves to Retrying.
// It returns ctx.Err() if the context ends first, stopping the machine.
func (m *Machine) Wait(ctx context.Context) error {
	if m.state != StateDeciding || !m.decision.Retries() {
		return nil
	}
	m.state = StateWaiting

	if d := m.Delay(); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			m.state = StateStopped
			return ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		m.state = StateStopped
		return err
	}

	m.attempt++
	m.state = StateRetrying
	return nil
}

func (m *Machine) stop() Decision {
	m.state = StateStopped
	m.decision = DoNotRetry()
	return m.decision
}
