package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "approvalflow"

// Metrics holds the Prometheus collectors of the lifecycle engine.
type Metrics struct {
	workflowsCreated  prometheus.Counter
	transitions       *prometheus.CounterVec
	sweepRuns         *prometheus.CounterVec
	sweepCompleted    prometheus.Counter
	sweepFailures     prometheus.Counter
	sweepDuration     prometheus.Histogram
	auditEventsDrop   prometheus.Counter
	auditEventsStored prometheus.Counter
}

// NewMetrics registers the engine collectors with reg. Use a fresh registry per
// test, registering twice on the same registry panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Metrics{
		workflowsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "workflows_created_total",
			Help:      "Workflows created through the API",
		}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "transition_requests_total",
			Help:      "Interactive status change requests by outcome",
		}, []string{"outcome"}),
		sweepRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "sweep",
			Name:      "runs_total",
			Help:      "Auto-completion sweeps by result (finished, skipped, failed)",
		}, []string{"result"}),
		sweepCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "sweep",
			Name:      "completed_workflows_total",
			Help:      "Workflows moved from APPROVED to COMPLETED by the sweeper",
		}),
		sweepFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "sweep",
			Name:      "item_failures_total",
			Help:      "Candidates the sweeper failed to complete",
		}),
		sweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "sweep",
			Name:      "duration_seconds",
			Help:      "Wall time of a sweep",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		auditEventsDrop: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "audit",
			Name:      "events_dropped_total",
			Help:      "Audit events dropped because the buffer was full",
		}),
		auditEventsStored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "audit",
			Name:      "events_stored_total",
			Help:      "Audit events written to the store",
		}),
	}
}

func (m *Metrics) transition(kind ErrorKind) {
	outcome := "ok"
	if kind != "" {
		outcome = string(kind)
	}
	m.transitions.WithLabelValues(outcome).Inc()
}
