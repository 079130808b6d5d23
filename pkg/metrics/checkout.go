package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records settlement outcomes for cart checkouts.
type CheckoutMetrics struct {
	duration      *prometheus.HistogramVec
	orders        prometheus.Counter
	rejectedLines *prometheus.CounterVec
	failure       *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_settlement_duration_seconds",
		Help:    "Duration of checkout settlements in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	orders := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_orders_created_total",
		Help: "Orders created by successful settlements.",
	})
	rejectedLines := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_rejected_lines_total",
		Help: "Cart lines rejected during settlement.",
	}, []string{"reason"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failure_total",
		Help: "Settlements aborted before any order was written.",
	}, []string{"reason"})
	reg.MustRegister(duration, orders, rejectedLines, failure)
	return &CheckoutMetrics{
		duration:      duration,
		orders:        orders,
		rejectedLines: rejectedLines,
		failure:       failure,
	}
}

// ObserveSettlement records the duration for a settlement with the given outcome.
func (c *CheckoutMetrics) ObserveSettlement(outcome string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// AddOrders increments the created-order counter by n.
func (c *CheckoutMetrics) AddOrders(n int) {
	if c == nil || c.orders == nil || n <= 0 {
		return
	}
	c.orders.Add(float64(n))
}

// IncRejectedLine increments the rejected-line counter for the given reason.
func (c *CheckoutMetrics) IncRejectedLine(reason string) {
	if c == nil || c.rejectedLines == nil {
		return
	}
	c.rejectedLines.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncFailure increments the aborted-settlement counter for the given reason.
func (c *CheckoutMetrics) IncFailure(reason string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
