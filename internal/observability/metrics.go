package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for scaler self-monitoring.
// It uses a custom registry to avoid polluting the global default.
type Metrics struct {
	Registry *prometheus.Registry

	// Reconciliation pass metrics
	PassDuration prometheus.Histogram
	PassesTotal  *prometheus.CounterVec

	// Tally metrics
	TallyDuration  prometheus.Histogram
	QueueBacklog   *prometheus.GaugeVec
	MalformedKeys  prometheus.Counter
	TallyKeysTotal prometheus.Gauge

	// Store metrics
	StoreRetries  prometheus.Counter
	StoreOpsTotal *prometheus.CounterVec

	// Scaling metrics
	ScaleOpsTotal   *prometheus.CounterVec
	DesiredReplicas *prometheus.GaugeVec
	GroupErrors     *prometheus.CounterVec

	// State metrics
	ScalerState *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance with all Prometheus metrics
// registered on a custom registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		PassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "queuescale_pass_duration_seconds",
			Help:    "Duration of full tally+reconcile passes in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		PassesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queuescale_passes_total",
			Help: "Total number of reconciliation passes.",
		}, []string{"status"}),

		TallyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "queuescale_tally_duration_seconds",
			Help:    "Duration of queue tally operations in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		QueueBacklog: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "queuescale_queue_backlog",
			Help: "Actionable queue entries per workload group from the last tally.",
		}, []string{"group"}),
		MalformedKeys: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "queuescale_malformed_keys_total",
			Help: "Total number of queue keys skipped as malformed.",
		}),
		TallyKeysTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "queuescale_tally_keys",
			Help: "Number of keys enumerated in the last tally.",
		}),

		StoreRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "queuescale_store_retries_total",
			Help: "Total number of store operation retry attempts.",
		}),
		StoreOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queuescale_store_ops_total",
			Help: "Total number of store operations.",
		}, []string{"op", "status"}),

		ScaleOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queuescale_scale_ops_total",
			Help: "Total number of scaling patches issued.",
		}, []string{"kind", "direction"}),
		DesiredReplicas: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "queuescale_desired_replicas",
			Help: "Desired replica count per workload group from the last pass.",
		}, []string{"group"}),
		GroupErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queuescale_group_errors_total",
			Help: "Total number of per-group reconciliation failures.",
		}, []string{"group"}),

		ScalerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "queuescale_state",
			Help: "Current scaler state (1 = active, 0 = inactive).",
		}, []string{"state"}),
	}

	// Register all metrics with the custom registry.
	m.Registry.MustRegister(
		m.PassDuration,
		m.PassesTotal,
		m.TallyDuration,
		m.QueueBacklog,
		m.MalformedKeys,
		m.TallyKeysTotal,
		m.StoreRetries,
		m.StoreOpsTotal,
		m.ScaleOpsTotal,
		m.DesiredReplicas,
		m.GroupErrors,
		m.ScalerState,
	)

	return m
}
