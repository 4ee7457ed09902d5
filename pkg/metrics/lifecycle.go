package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LifecycleMetrics records reservation lifecycle outcomes.
type LifecycleMetrics struct {
	operations   *prometheus.CounterVec
	refundsCents prometheus.Histogram
}

// NewLifecycleMetrics registers the lifecycle metrics on the provided registerer.
func NewLifecycleMetrics(reg prometheus.Registerer) *LifecycleMetrics {
	if reg == nil {
		return &LifecycleMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reservation_lifecycle_operations_total",
		Help: "Reservation lifecycle operations by operation and outcome.",
	}, []string{"operation", "outcome"})
	refunds := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reservation_refund_cents",
		Help:    "Refund amounts issued on cancellation, in cents.",
		Buckets: prometheus.ExponentialBuckets(100, 10, 6),
	})
	reg.MustRegister(operations, refunds)
	return &LifecycleMetrics{
		operations:   operations,
		refundsCents: refunds,
	}
}

// IncSuccess increments the success counter for the named operation.
func (m *LifecycleMetrics) IncSuccess(operation string) {
	if m == nil || m.operations == nil {
		return
	}
	m.operations.WithLabelValues(operation, "success").Inc()
}

// IncFailure increments the failure counter for the named operation.
func (m *LifecycleMetrics) IncFailure(operation string) {
	if m == nil || m.operations == nil {
		return
	}
	m.operations.WithLabelValues(operation, "failure").Inc()
}

// ObserveRefund records a refund amount issued on cancellation.
func (m *LifecycleMetrics) ObserveRefund(amountCents int64) {
	if m == nil || m.refundsCents == nil {
		return
	}
	m.refundsCents.Observe(float64(amountCents))
}
