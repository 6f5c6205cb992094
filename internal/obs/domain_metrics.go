package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// DiscountAppliedTotal counts discount rule applications by rule type.
	DiscountAppliedTotal *prometheus.CounterVec
	// OrderSubmissionTotal counts order submission outcomes.
	OrderSubmissionTotal *prometheus.CounterVec
	// NotificationTotal counts order summary notification outcomes.
	NotificationTotal *prometheus.CounterVec
	// SessionSnapshotLoadTotal counts session configuration loads by source.
	SessionSnapshotLoadTotal *prometheus.CounterVec
	// UpstreamRequestLatency records commerce backend call latency in milliseconds.
	UpstreamRequestLatency *prometheus.HistogramVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		DiscountAppliedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_applied_total",
			Help:      "Count of discount rules applied to submitted orders.",
		}, []string{"type"})
		OrderSubmissionTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_submission_total",
			Help:      "Count of order submission outcomes.",
		}, []string{"result"})
		NotificationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_total",
			Help:      "Count of order notification outcomes.",
		}, []string{"result"})
		SessionSnapshotLoadTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_snapshot_load_total",
			Help:      "Count of session configuration loads by source.",
		}, []string{"source"})
		UpstreamRequestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_ms",
			Help:      "Latency of commerce backend requests in milliseconds.",
			Buckets:   []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"operation", "result"})

		mustRegisterCollector(reg, DiscountAppliedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				DiscountAppliedTotal = v
			}
		})
		mustRegisterCollector(reg, OrderSubmissionTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				OrderSubmissionTotal = v
			}
		})
		mustRegisterCollector(reg, NotificationTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				NotificationTotal = v
			}
		})
		mustRegisterCollector(reg, SessionSnapshotLoadTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SessionSnapshotLoadTotal = v
			}
		})
		mustRegisterCollector(reg, UpstreamRequestLatency, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.HistogramVec); ok {
				UpstreamRequestLatency = v
			}
		})
	})
}

// CountDiscount records one applied discount of the given rule type.
func CountDiscount(ruleType string) {
	if DiscountAppliedTotal != nil {
		DiscountAppliedTotal.WithLabelValues(ruleType).Inc()
	}
}

// CountOrderSubmission records an order submission outcome.
func CountOrderSubmission(result string) {
	if OrderSubmissionTotal != nil {
		OrderSubmissionTotal.WithLabelValues(result).Inc()
	}
}

// CountNotification records a notification outcome.
func CountNotification(result string) {
	if NotificationTotal != nil {
		NotificationTotal.WithLabelValues(result).Inc()
	}
}

// CountSnapshotLoad records where a session snapshot came from.
func CountSnapshotLoad(source string) {
	if SessionSnapshotLoadTotal != nil {
		SessionSnapshotLoadTotal.WithLabelValues(source).Inc()
	}
}

// ObserveUpstream records the latency of a commerce backend call.
func ObserveUpstream(operation, result string, ms float64) {
	if UpstreamRequestLatency != nil {
		UpstreamRequestLatency.WithLabelValues(operation, result).Observe(ms)
	}
}
