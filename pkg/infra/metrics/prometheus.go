// Package metrics exposes the process's Prometheus collectors, registered
// against the default registry and served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PaymentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stablepay_payments_created_total",
		Help: "Payments created, by network and token.",
	}, []string{"network", "token"})

	PaymentsConfirmed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stablepay_payments_confirmed_total",
		Help: "Payments confirmed, by network and token.",
	}, []string{"network", "token"})

	PaymentsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stablepay_payments_failed_total",
		Help: "Payments that exhausted Monitor retries or expired.",
	}, []string{"reason"})

	MonitorQueueSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stablepay_monitor_queue_size",
		Help: "Payments currently enrolled in the Monitor.",
	})

	WebhookDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stablepay_webhook_deliveries_total",
		Help: "Webhook delivery attempts, by outcome.",
	}, []string{"outcome"})

	OfacRefreshRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stablepay_ofac_refresh_runs_total",
		Help: "OFAC ingestion runs, by outcome.",
	}, []string{"outcome"})

	OfacAddressesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stablepay_ofac_addresses_total",
		Help: "Sanctioned addresses currently held after the last ingestion run.",
	})
)
