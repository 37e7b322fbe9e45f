package autoscaler

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/queuescale/queuescale-agent/internal/config"
	"github.com/queuescale/queuescale-agent/internal/errors"
	"github.com/queuescale/queuescale-agent/internal/observability"
	"github.com/queuescale/queuescale-agent/internal/queue"
	"github.com/queuescale/queuescale-agent/internal/reconciler"
)

// PassSummary records the outcome of one tally+reconcile pass for the
// debug endpoint.
type PassSummary struct {
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration"`
	Tally     map[string]int   `json:"tally"`
	Stats     reconciler.Stats `json:"stats"`
}

// Autoscaler runs the poll loop: one full tally followed by one full
// reconciliation sweep per tick, strictly sequential.
type Autoscaler struct {
	config         *config.Config
	tallier        *queue.Tallier
	reconciler     *reconciler.Reconciler
	stateMachine   *StateMachine
	errorCollector *errors.ErrorCollector
	metrics        *observability.Metrics

	latestPass atomic.Pointer[PassSummary]
	ready      atomic.Bool
	startedAt  time.Time
}

// New creates an Autoscaler with all required dependencies.
func New(
	cfg *config.Config,
	tallier *queue.Tallier,
	rec *reconciler.Reconciler,
	stateMachine *StateMachine,
	errCollector *errors.ErrorCollector,
	metrics *observability.Metrics,
) *Autoscaler {
	return &Autoscaler{
		config:         cfg,
		tallier:        tallier,
		reconciler:     rec,
		stateMachine:   stateMachine,
		errorCollector: errCollector,
		metrics:        metrics,
		startedAt:      time.Now(),
	}
}

// IsReady reports whether at least one pass has completed successfully.
// Implements health.ReadinessChecker.
func (a *Autoscaler) IsReady() bool {
	return a.ready.Load()
}

// LatestPass returns the most recent PassSummary, or nil if none has
// completed yet. Implements health.PassProvider.
func (a *Autoscaler) LatestPass() interface{} {
	p := a.latestPass.Load()
	if p == nil {
		return nil
	}
	return p
}

// Run executes the poll loop until the context is canceled. The first pass
// runs immediately; subsequent passes run on the configured interval, or are
// skipped while the state machine holds the loop in backoff after a store
// outage.
func (a *Autoscaler) Run(ctx context.Context) error {
	slog.Info("autoscaler starting",
		"groups", a.reconciler.Groups(),
		"poll_interval", a.config.PollInterval,
		"actionable_status", a.config.ActionableStatus,
	)

	ticker := time.NewTicker(a.config.PollInterval)
	defer ticker.Stop()

	a.doPass(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		switch a.stateMachine.State() {
		case StateBackoff:
			if !a.stateMachine.IsBackoffExpired() {
				slog.Debug("in backoff, skipping pass",
					"remaining", a.stateMachine.BackoffRemaining().Round(time.Millisecond))
				continue
			}
			a.doPass(ctx)
		default:
			a.doPass(ctx)
		}
	}
}

// doPass runs one tally + reconcile sweep and updates state accordingly.
func (a *Autoscaler) doPass(ctx context.Context) {
	start := time.Now()
	a.setStateGauge()

	tally, err := a.tallier.Tally(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		a.stateMachine.RecordFailure("store unreachable")
		a.errorCollector.Report(errors.ScalerError{
			Code:      errors.ErrStoreUnreachable,
			Message:   fmt.Sprintf("tally failed: %v", err),
			Component: "autoscaler",
			Timestamp: time.Now().UnixMilli(),
			Err:       err,
		})
		if a.metrics != nil {
			a.metrics.PassesTotal.WithLabelValues("error").Inc()
		}
		slog.Warn("pass aborted, store tally failed",
			"error", err,
			"backoff", a.stateMachine.BackoffRemaining().Round(time.Millisecond),
		)
		a.setStateGauge()
		return
	}

	stats := a.reconciler.Reconcile(ctx, tally)

	elapsed := time.Since(start)
	a.stateMachine.RecordSuccess()
	a.ready.Store(true)
	a.latestPass.Store(&PassSummary{
		StartedAt: start,
		Duration:  elapsed,
		Tally:     tally,
		Stats:     stats,
	})

	if a.metrics != nil {
		a.metrics.PassDuration.Observe(elapsed.Seconds())
		if stats.Errors > 0 {
			a.metrics.PassesTotal.WithLabelValues("partial").Inc()
		} else {
			a.metrics.PassesTotal.WithLabelValues("success").Inc()
		}
	}
	a.setStateGauge()

	slog.Info("pass completed",
		"groups", stats.Groups,
		"scaled", stats.Scaled,
		"noops", stats.NoOps,
		"errors", stats.Errors,
		"duration_ms", elapsed.Milliseconds(),
	)
}

// setStateGauge reflects the state machine into the state metric.
func (a *Autoscaler) setStateGauge() {
	if a.metrics == nil {
		return
	}
	current := a.stateMachine.State()
	for _, s := range []State{StateStarting, StateRunning, StateBackoff} {
		v := 0.0
		if s == current {
			v = 1.0
		}
		a.metrics.ScalerState.WithLabelValues(string(s)).Set(v)
	}
}
