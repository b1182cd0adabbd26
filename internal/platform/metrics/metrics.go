package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	purchases = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_purchases_total",
			Help: "Purchase confirmations by outcome",
		},
		[]string{"outcome"},
	)

	refunds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_compensating_refunds_total",
			Help: "Refunds issued after a post-payment inventory failure",
		},
		[]string{"status", "reason"},
	)

	scans = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_scans_total",
			Help: "Ticket scan attempts by outcome",
		},
		[]string{"outcome", "reason"},
	)

	txRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_transaction_retries_total",
			Help: "Transactions retried after an optimistic concurrency conflict",
		},
		[]string{"store"},
	)

	paymentCalls = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_processor_call_duration_seconds",
			Help:    "Latency of payment processor calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 8),
		},
		[]string{"operation", "status"},
	)
)

func TrackPurchase(outcome string) {
	purchases.WithLabelValues(outcome).Inc()
}

func TrackRefund(status, reason string) {
	refunds.WithLabelValues(status, reason).Inc()
}

func TrackScan(outcome, reason string) {
	scans.WithLabelValues(outcome, reason).Inc()
}

func TrackTxRetry(store string) {
	txRetries.WithLabelValues(store).Inc()
}

func ObservePaymentCall(operation, status string, seconds float64) {
	paymentCalls.WithLabelValues(operation, status).Observe(seconds)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
