package autoscaler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// mockClock is a controllable clock for backoff tests.
type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock() *mockClock {
	return &mockClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *mockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *mockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

func TestStateMachine_StartsInStarting(t *testing.T) {
	sm := NewStateMachine(newMockClock())
	assert.Equal(t, StateStarting, sm.State())
}

func TestStateMachine_SuccessEntersRunning(t *testing.T) {
	sm := NewStateMachine(newMockClock())
	sm.RecordSuccess()
	assert.Equal(t, StateRunning, sm.State())
	assert.Empty(t, sm.StateReason())
}

func TestStateMachine_FailureEntersBackoff(t *testing.T) {
	clk := newMockClock()
	sm := NewStateMachine(clk)

	sm.RecordFailure("store unreachable")
	assert.Equal(t, StateBackoff, sm.State())
	assert.Equal(t, "store unreachable", sm.StateReason())
	assert.False(t, sm.IsBackoffExpired())

	clk.Advance(6 * time.Second)
	assert.True(t, sm.IsBackoffExpired())
}

func TestStateMachine_BackoffDoubles(t *testing.T) {
	clk := newMockClock()
	sm := NewStateMachine(clk)

	sm.RecordFailure("outage")
	first := sm.BackoffRemaining()
	sm.RecordFailure("outage")
	second := sm.BackoffRemaining()

	assert.Equal(t, 2*first, second)
}

func TestStateMachine_BackoffCapped(t *testing.T) {
	clk := newMockClock()
	sm := NewStateMachine(clk)

	for i := 0; i < 20; i++ {
		sm.RecordFailure("outage")
	}
	assert.LessOrEqual(t, sm.BackoffRemaining(), backoffCap)
}

func TestStateMachine_SuccessResetsFailures(t *testing.T) {
	clk := newMockClock()
	sm := NewStateMachine(clk)

	sm.RecordFailure("outage")
	sm.RecordFailure("outage")
	sm.RecordSuccess()

	sm.RecordFailure("outage")
	assert.Equal(t, backoffBase, sm.BackoffRemaining())
}
