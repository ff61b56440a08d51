package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics records order throughput and audit activity.
type StoreMetrics struct {
	ordersPlaced  *prometheus.CounterVec
	ordersFailed  *prometheus.CounterVec
	orderDuration *prometheus.HistogramVec
	auditEntries  *prometheus.CounterVec
}

// NewStoreMetrics registers the bookstore metrics on the provided registerer.
// A nil registerer yields a no-op collector, which keeps tests quiet.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	ordersPlaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders accepted, labelled by final status.",
	}, []string{"status"})
	ordersFailed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Orders rejected, labelled by failure reason.",
	}, []string{"reason"})
	orderDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_placement_seconds",
		Help:    "Duration of order placement transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})
	auditEntries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_entries_total",
		Help: "Audit entries written, labelled by action.",
	}, []string{"action"})
	reg.MustRegister(ordersPlaced, ordersFailed, orderDuration, auditEntries)
	return &StoreMetrics{
		ordersPlaced:  ordersPlaced,
		ordersFailed:  ordersFailed,
		orderDuration: orderDuration,
		auditEntries:  auditEntries,
	}
}

// IncOrderPlaced increments the placed counter for the given status.
func (s *StoreMetrics) IncOrderPlaced(status string) {
	if s == nil || s.ordersPlaced == nil {
		return
	}
	s.ordersPlaced.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncOrderFailed increments the failed counter for the given reason.
func (s *StoreMetrics) IncOrderFailed(reason string) {
	if s == nil || s.ordersFailed == nil {
		return
	}
	s.ordersFailed.WithLabelValues(normalizeLabel(reason)).Inc()
}

// ObserveOrderDuration records how long an order transaction took.
func (s *StoreMetrics) ObserveOrderDuration(status string, duration time.Duration) {
	if s == nil || s.orderDuration == nil {
		return
	}
	s.orderDuration.WithLabelValues(normalizeLabel(status)).Observe(duration.Seconds())
}

// IncAuditEntry increments the audit counter for the given action.
func (s *StoreMetrics) IncAuditEntry(action string) {
	if s == nil || s.auditEntries == nil {
		return
	}
	s.auditEntries.WithLabelValues(normalizeLabel(action)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
