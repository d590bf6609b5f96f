// Package metrics registers the payment-flow counters on the default
// prometheus registry, exposed by the web server at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PaymentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tamkeenpay_payments_created_total",
		Help: "Payments inserted with a pending status.",
	})

	GatewayInitFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tamkeenpay_gateway_init_failures_total",
		Help: "Hosted-checkout initializations that returned a failure pair.",
	})

	WebhooksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tamkeenpay_webhooks_processed_total",
		Help: "Webhook deliveries by outcome.",
	}, []string{"outcome"})

	LockContention = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tamkeenpay_lock_contention_total",
		Help: "Lock acquisitions rejected because the key was held.",
	}, []string{"namespace"})
)
