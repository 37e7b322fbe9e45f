package errors

import (
	"sync"
	"testing"
	"time"
)

// mockClock is a controllable clock for testing auto-expiry.
type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock(t time.Time) *mockClock {
	return &mockClock{now: t}
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

func TestScalerError_Implements_Error(t *testing.T) {
	se := ScalerError{
		Code:      ErrStoreUnreachable,
		Message:   "redis not reachable",
		Component: "store",
		Timestamp: time.Now().UnixMilli(),
	}

	// Must satisfy the error interface.
	var err error = &se
	if err.Error() != "redis not reachable" {
		t.Fatalf("expected Error() = %q, got %q", "redis not reachable", err.Error())
	}
}

func TestErrorCollector_Report(t *testing.T) {
	clk := newMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ec := NewErrorCollector(clk)

	ec.Report(ScalerError{
		Code:      ErrStoreUnreachable,
		Message:   "connection refused",
		Component: "store",
		Timestamp: clk.Now().UnixMilli(),
	})

	active := ec.GetActiveErrors()
	if len(active) != 1 {
		t.Fatalf("expected 1 active error, got %d", len(active))
	}
	if active[0].Code != ErrStoreUnreachable {
		t.Fatalf("expected code %s, got %s", ErrStoreUnreachable, active[0].Code)
	}
}

func TestErrorCollector_AutoExpiry(t *testing.T) {
	clk := newMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ec := NewErrorCollector(clk)

	ec.Report(ScalerError{
		Code:      ErrScaleFailed,
		Message:   "patch failed",
		Component: "reconciler.predict",
		Timestamp: clk.Now().UnixMilli(),
	})

	// Advance 6 minutes — beyond the 5-minute TTL.
	clk.Advance(6 * time.Minute)

	active := ec.GetActiveErrors()
	if len(active) != 0 {
		t.Fatalf("expected 0 active errors after TTL, got %d", len(active))
	}
}

func TestErrorCollector_DedupByCodeAndComponent(t *testing.T) {
	clk := newMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ec := NewErrorCollector(clk)

	// Same code+component — deduped.
	ec.Report(ScalerError{Code: ErrScaleFailed, Message: "first", Component: "reconciler.train"})
	ec.Report(ScalerError{Code: ErrScaleFailed, Message: "second", Component: "reconciler.train"})

	// Same code, different component — separate entry.
	ec.Report(ScalerError{Code: ErrScaleFailed, Message: "other group", Component: "reconciler.predict"})

	active := ec.GetActiveErrors()
	if len(active) != 2 {
		t.Fatalf("expected 2 active errors, got %d", len(active))
	}

	codes := ec.GetActiveErrorCodes()
	if len(codes) != 1 || codes[0] != string(ErrScaleFailed) {
		t.Fatalf("expected single deduped code %s, got %v", ErrScaleFailed, codes)
	}
}

func TestErrorCollector_RefreshExtendsTTL(t *testing.T) {
	clk := newMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ec := NewErrorCollector(clk)

	ec.Report(ScalerError{Code: ErrPassFailed, Message: "tally failed", Component: "autoscaler"})

	clk.Advance(4 * time.Minute)
	ec.Report(ScalerError{Code: ErrPassFailed, Message: "tally failed again", Component: "autoscaler"})

	// 4m after the refresh the original report is 8m old but the entry is live.
	clk.Advance(4 * time.Minute)
	active := ec.GetActiveErrors()
	if len(active) != 1 {
		t.Fatalf("expected refreshed error to remain active, got %d entries", len(active))
	}
	if active[0].Message != "tally failed again" {
		t.Fatalf("expected refreshed message, got %q", active[0].Message)
	}
}

func TestErrorCollector_Clear(t *testing.T) {
	clk := newMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ec := NewErrorCollector(clk)

	ec.Report(ScalerError{Code: ErrBadConfigRecord, Message: "bad record", Component: "scaling"})
	ec.Clear()

	if n := len(ec.GetActiveErrors()); n != 0 {
		t.Fatalf("expected 0 errors after Clear, got %d", n)
	}
}
