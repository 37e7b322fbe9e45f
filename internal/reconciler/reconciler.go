package reconciler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/queuescale/queuescale-agent/internal/errors"
	"github.com/queuescale/queuescale-agent/internal/observability"
	"github.com/queuescale/queuescale-agent/internal/orchestrator"
	"github.com/queuescale/queuescale-agent/internal/scaling"
)

// DeploymentScaler reads and writes Deployment replica counts.
type DeploymentScaler interface {
	orchestrator.ReplicaReader
	orchestrator.ReplicaWriter
}

// JobScaler reads and writes Job completion counts.
type JobScaler interface {
	orchestrator.CompletionReader
	orchestrator.CompletionWriter
}

// Stats summarizes one reconciliation sweep.
type Stats struct {
	Groups int `json:"groups"`
	Scaled int `json:"scaled"`
	NoOps  int `json:"noops"`
	Errors int `json:"errors"`
}

// Reconciler drives each configured scaling group toward its desired
// replica count. One Reconcile call sweeps every group; per-group failures
// are captured and reported without aborting the sweep.
type Reconciler struct {
	deployments DeploymentScaler
	jobs        JobScaler
	groups      []scaling.GroupSpec
	metrics     *observability.Metrics
	errs        *errors.ErrorCollector
}

// New creates a Reconciler over an already-parsed, immutable group set.
func New(deployments DeploymentScaler, jobs JobScaler, groups []scaling.GroupSpec,
	metrics *observability.Metrics, errs *errors.ErrorCollector) *Reconciler {
	return &Reconciler{
		deployments: deployments,
		jobs:        jobs,
		groups:      groups,
		metrics:     metrics,
		errs:        errs,
	}
}

// Groups returns the number of configured scaling groups.
func (r *Reconciler) Groups() int { return len(r.groups) }

// Reconcile runs one sweep over all groups using the given tally.
func (r *Reconciler) Reconcile(ctx context.Context, tally map[string]int) Stats {
	stats := Stats{Groups: len(r.groups)}

	for _, g := range r.groups {
		scaled, err := r.reconcileGroup(ctx, g, tally)
		if err != nil {
			stats.Errors++
			slog.Warn("scaling group reconciliation failed",
				"group", g.GroupKey,
				"kind", string(g.Kind),
				"resource", g.Namespace+"/"+g.ResourceName,
				"error", err,
			)
			if r.metrics != nil {
				r.metrics.GroupErrors.WithLabelValues(g.GroupKey).Inc()
			}
			if r.errs != nil {
				r.errs.Report(errors.ScalerError{
					Code:      errors.ErrScaleFailed,
					Message:   fmt.Sprintf("reconcile %s: %v", g.GroupKey, err),
					Component: "reconciler." + g.GroupKey,
					Timestamp: time.Now().UnixMilli(),
					Err:       err,
				})
			}
			continue
		}
		if scaled {
			stats.Scaled++
		} else {
			stats.NoOps++
		}
	}

	return stats
}

// reconcileGroup reads the current count, computes the desired count, and
// patches only on a difference. Returns true when a patch was issued.
func (r *Reconciler) reconcileGroup(ctx context.Context, g scaling.GroupSpec, tally map[string]int) (bool, error) {
	var current int32
	var err error

	switch g.Kind {
	case scaling.KindDeployment:
		current, err = r.deployments.Replicas(ctx, g.Namespace, g.ResourceName)
	case scaling.KindJob:
		current, err = r.jobs.Completions(ctx, g.Namespace, g.ResourceName)
	default:
		return false, fmt.Errorf("unrecognized resource kind %q", g.Kind)
	}
	if err != nil {
		return false, err
	}

	backlog := tally[g.GroupKey]
	desired := scaling.DesiredReplicas(backlog, g.KeysPerPod, g.MinPods, g.MaxPods, int(current))

	if r.metrics != nil {
		r.metrics.DesiredReplicas.WithLabelValues(g.GroupKey).Set(float64(desired))
	}

	if int32(desired) == current {
		slog.Debug("scaling group already at desired count",
			"group", g.GroupKey, "replicas", current)
		return false, nil
	}

	switch g.Kind {
	case scaling.KindDeployment:
		err = r.deployments.ScaleReplicas(ctx, g.Namespace, g.ResourceName, int32(desired))
	case scaling.KindJob:
		err = r.jobs.ScaleCompletions(ctx, g.Namespace, g.ResourceName, int32(desired))
	}
	if err != nil {
		return false, err
	}

	direction := "up"
	if int32(desired) < current {
		direction = "down"
	}
	if r.metrics != nil {
		r.metrics.ScaleOpsTotal.WithLabelValues(string(g.Kind), direction).Inc()
	}
	slog.Info("scaled workload group",
		"group", g.GroupKey,
		"kind", string(g.Kind),
		"resource", g.Namespace+"/"+g.ResourceName,
		"backlog", backlog,
		"from", current,
		"to", desired,
	)
	return true, nil
}
