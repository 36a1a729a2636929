// Package metrics exports storefront counters to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Checkout results.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

// Storefront holds the cart and checkout metrics. A nil *Storefront, or one
// built without a registerer, records nothing.
type Storefront struct {
	cartOps          *prometheus.CounterVec
	corruptRecords   prometheus.Counter
	checkouts        *prometheus.CounterVec
	checkoutDuration prometheus.Histogram
}

// NewStorefront registers the storefront metrics on reg.
func NewStorefront(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return &Storefront{}
	}
	cartOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Cart mutations applied, by operation.",
	}, []string{"op"})
	corrupt := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_corrupt_records_total",
		Help: "Persisted cart records discarded on load.",
	})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkouts_total",
		Help: "Checkout attempts, by result.",
	}, []string{"result"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of successful checkouts in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(cartOps, corrupt, checkouts, duration)
	return &Storefront{
		cartOps:          cartOps,
		corruptRecords:   corrupt,
		checkouts:        checkouts,
		checkoutDuration: duration,
	}
}

// IncCartOp counts one applied cart mutation.
func (s *Storefront) IncCartOp(op string) {
	if s == nil || s.cartOps == nil {
		return
	}
	s.cartOps.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncCorruptRecord counts a stored cart that could not be decoded.
func (s *Storefront) IncCorruptRecord() {
	if s == nil || s.corruptRecords == nil {
		return
	}
	s.corruptRecords.Inc()
}

// ObserveCheckout counts a checkout attempt; durations are kept for
// successful ones only.
func (s *Storefront) ObserveCheckout(result string, d time.Duration) {
	if s == nil || s.checkouts == nil {
		return
	}
	s.checkouts.WithLabelValues(normalizeLabel(result)).Inc()
	if result == ResultSuccess {
		s.checkoutDuration.Observe(d.Seconds())
	}
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
