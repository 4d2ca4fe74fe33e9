package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Worker-side metrics. Exposed on the worker health listener at /metrics.
var (
	PaymentsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paygate_payments_processed_total",
			Help: "Payments driven to a terminal processing outcome.",
		},
		[]string{"outcome"}, // completed | failed | skipped
	)

	WebhookDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paygate_webhook_deliveries_total",
			Help: "Webhook delivery attempts by outcome.",
		},
		[]string{"outcome"}, // delivered | retried | exhausted | dropped
	)

	WebhookDeliveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "paygate_webhook_delivery_duration_seconds",
			Help:    "Wall time of outbound webhook POSTs.",
			Buckets: prometheus.DefBuckets,
		},
	)

	OutboxEventsClaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "paygate_outbox_events_claimed_total",
			Help: "Outbox rows claimed by the poller.",
		},
	)
)
