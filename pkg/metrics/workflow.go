package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkflowMetrics records return transitions and refund gateway outcomes.
type WorkflowMetrics struct {
	transitions    *prometheus.CounterVec
	refunds        *prometheus.CounterVec
	gatewayLatency *prometheus.HistogramVec
}

// NewWorkflowMetrics registers the workflow metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	if reg == nil {
		return &WorkflowMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "return_transitions_total",
		Help: "Return request status transitions by source and target status.",
	}, []string{"from", "to"})
	refunds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "refund_gateway_calls_total",
		Help: "Refund gateway calls by provider and outcome.",
	}, []string{"provider", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "refund_gateway_duration_seconds",
		Help:    "Latency of refund gateway calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})
	reg.MustRegister(transitions, refunds, latency)
	return &WorkflowMetrics{
		transitions:    transitions,
		refunds:        refunds,
		gatewayLatency: latency,
	}
}

// IncTransition counts one committed return status change.
func (m *WorkflowMetrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// ObserveRefund records a gateway call outcome ("success", "failure", "missing_data").
func (m *WorkflowMetrics) ObserveRefund(provider, outcome string, duration time.Duration) {
	if m == nil || m.refunds == nil {
		return
	}
	m.refunds.WithLabelValues(normalizeLabel(provider), normalizeLabel(outcome)).Inc()
	if duration > 0 {
		m.gatewayLatency.WithLabelValues(normalizeLabel(provider)).Observe(duration.Seconds())
	}
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
