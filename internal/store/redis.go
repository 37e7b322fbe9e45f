package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/queuescale/queuescale-agent/internal/observability"
)

// scanPageSize is the COUNT hint passed to SCAN.
const scanPageSize = 1000

// Commands is the subset of the go-redis API the scaler consumes.
// *redis.Client satisfies it; tests substitute a fake.
type Commands interface {
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	HGet(ctx context.Context, key, field string) *redis.StringCmd
}

// RetryPolicy bounds the retry behavior applied to every store operation.
// Backoff is the constant sleep between attempts; MaxRetries is the number
// of re-attempts after the first, so an operation runs at most MaxRetries+1
// times before the transient error is surfaced to the caller.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

// Client wraps the raw store with bounded retry on transient connectivity
// errors. All operations are read-only, so retries are always idempotent.
type Client struct {
	rdb     Commands
	policy  RetryPolicy
	metrics *observability.Metrics
}

// NewClient creates a resilient store client. The retry policy is explicit
// per-client state, not ambient configuration.
func NewClient(rdb Commands, policy RetryPolicy, metrics *observability.Metrics) *Client {
	return &Client{
		rdb:     rdb,
		policy:  policy,
		metrics: metrics,
	}
}

// ScanKeys enumerates every key matching the given pattern ("" for all keys)
// by driving the SCAN cursor to completion. The full enumeration is retried
// as a unit: a connectivity failure mid-cursor discards partial results and
// starts over, so callers never observe a partial key set.
func (c *Client) ScanKeys(ctx context.Context, match string) ([]string, error) {
	var keys []string

	err := c.withRetry(ctx, "scan", func() error {
		keys = keys[:0]
		var cursor uint64
		for {
			page, next, err := c.rdb.Scan(ctx, cursor, match, scanPageSize).Result()
			if err != nil {
				return err
			}
			keys = append(keys, page...)
			cursor = next
			if cursor == 0 {
				return nil
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("store: scan %q: %w", match, err)
	}
	return keys, nil
}

// HGetField reads a single hash field. The second return value is false when
// the key or field does not exist; absence is not an error.
func (c *Client) HGetField(ctx context.Context, key, field string) (string, bool, error) {
	var val string
	var found bool

	err := c.withRetry(ctx, "hget", func() error {
		v, err := c.rdb.HGet(ctx, key, field).Result()
		if err == redis.Nil {
			found = false
			return nil
		}
		if err != nil {
			return err
		}
		val = v
		found = true
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("store: hget %s %s: %w", key, field, err)
	}
	return val, found, nil
}

// withRetry runs fn up to MaxRetries+1 times, sleeping Backoff between
// attempts. Only transient connectivity errors are retried; anything else
// returns immediately. After exhaustion the last transient error is returned
// unrecovered.
func (c *Client) withRetry(ctx context.Context, op string, fn func() error) error {
	maxAttempts := c.policy.MaxRetries + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if c.metrics != nil {
				c.metrics.StoreRetries.Inc()
			}
			if err := sleepCtx(ctx, c.policy.Backoff); err != nil {
				return lastErr
			}
		}

		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		err := fn()
		if err == nil {
			c.countOp(op, "success")
			return nil
		}
		if !IsTransient(err) {
			c.countOp(op, "error")
			return err
		}
		lastErr = err
	}

	c.countOp(op, "error")
	return lastErr
}

func (c *Client) countOp(op, status string) {
	if c.metrics != nil {
		c.metrics.StoreOpsTotal.WithLabelValues(op, status).Inc()
	}
}

// sleepCtx sleeps for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
