package autoscaler

import (
	"sync"
	"time"

	"github.com/queuescale/queuescale-agent/internal/errors"
)

// State represents the current lifecycle state of the scaler loop.
type State string

// Scaler lifecycle states.
const (
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateBackoff  State = "backoff"
)

// Pass-level backoff bounds. Operation-level retry inside the store client
// handles short blips; this machine handles sustained store outages by
// spacing out whole passes.
const (
	backoffBase = 5 * time.Second
	backoffCap  = 5 * time.Minute
)

// StateMachine tracks the scaler's lifecycle state, entering backoff after
// failed passes with exponentially increasing hold time.
type StateMachine struct {
	mu           sync.RWMutex
	state        State
	stateReason  string
	failures     int
	backoffUntil time.Time
	clock        errors.Clock
}

// NewStateMachine creates a StateMachine starting in StateStarting.
func NewStateMachine(clock errors.Clock) *StateMachine {
	return &StateMachine{
		state: StateStarting,
		clock: clock,
	}
}

// State returns the current state.
func (sm *StateMachine) State() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.state
}

// StateReason returns the human-readable reason for the current state.
func (sm *StateMachine) StateReason() string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.stateReason
}

// RecordSuccess transitions to StateRunning and resets the failure count.
func (sm *StateMachine) RecordSuccess() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.state = StateRunning
	sm.stateReason = ""
	sm.failures = 0
}

// RecordFailure transitions to StateBackoff, doubling the hold time with
// each consecutive failure up to the cap.
func (sm *StateMachine) RecordFailure(reason string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.failures++
	backoff := backoffBase << (sm.failures - 1)
	if backoff > backoffCap || backoff <= 0 {
		backoff = backoffCap
	}

	sm.state = StateBackoff
	sm.stateReason = reason
	sm.backoffUntil = sm.clock.Now().Add(backoff)
}

// IsBackoffExpired returns true if the backoff period has elapsed.
func (sm *StateMachine) IsBackoffExpired() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.clock.Now().After(sm.backoffUntil)
}

// BackoffRemaining returns the duration until backoff expires, or 0 if expired.
func (sm *StateMachine) BackoffRemaining() time.Duration {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	remaining := sm.backoffUntil.Sub(sm.clock.Now())
	if remaining < 0 {
		return 0
	}
	return remaining
}
