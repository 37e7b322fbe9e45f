package queue

import (
	"context"
	"log/slog"
	"time"

	"github.com/queuescale/queuescale-agent/internal/observability"
)

// KeyScanner enumerates store keys, optionally filtered by a match pattern.
type KeyScanner interface {
	ScanKeys(ctx context.Context, match string) ([]string, error)
}

// Tallier counts actionable queue entries per workload group. A tally is
// rebuilt in full on every call; nothing is carried between passes.
type Tallier struct {
	store   KeyScanner
	status  string
	match   string
	metrics *observability.Metrics
}

// NewTallier creates a Tallier that counts entries whose status equals
// actionableStatus. match is forwarded to the store scan ("" scans all keys).
func NewTallier(store KeyScanner, actionableStatus, match string, metrics *observability.Metrics) *Tallier {
	return &Tallier{
		store:   store,
		status:  actionableStatus,
		match:   match,
		metrics: metrics,
	}
}

// Tally enumerates all keys and returns the per-group count of entries in
// the actionable status. Malformed keys are skipped. The enumeration either
// succeeds as a whole (after store-level retries) or the call fails; a tally
// is never built from partial results.
func (t *Tallier) Tally(ctx context.Context) (map[string]int, error) {
	start := time.Now()

	keys, err := t.store.ScanKeys(ctx, t.match)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	malformed := 0
	for _, raw := range keys {
		k, ok := ParseKey(raw)
		if !ok {
			malformed++
			slog.Debug("skipping malformed queue key", "key", raw)
			continue
		}
		if k.Status == t.status {
			counts[k.Group]++
		}
	}

	if t.metrics != nil {
		t.metrics.TallyDuration.Observe(time.Since(start).Seconds())
		t.metrics.TallyKeysTotal.Set(float64(len(keys)))
		if malformed > 0 {
			t.metrics.MalformedKeys.Add(float64(malformed))
		}
		for group, n := range counts {
			t.metrics.QueueBacklog.WithLabelValues(group).Set(float64(n))
		}
	}

	return counts, nil
}
