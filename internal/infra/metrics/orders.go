package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(ordersSubmittedTotal, duplicateEventsTotal, ordersFailedTotal) }

var ordersSubmittedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "orders_submitted_total",
		Help: "Orders submitted upstream, labeled by provider.",
	},
	[]string{"provider"},
)

var ordersFailedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Orders finishing in a failure branch, labeled by status.",
	},
	[]string{"status"}, // 'failed_unsupported', 'failed_submission'
)

var duplicateEventsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "payment_events_duplicate_total",
		Help: "Redelivered payment events absorbed as idempotent no-ops.",
	},
)

func IncOrderSubmitted(provider string) {
	ordersSubmittedTotal.WithLabelValues(norm(provider)).Inc()
}

func IncOrderFailed(status string) {
	ordersFailedTotal.WithLabelValues(norm(status)).Inc()
}

func IncDuplicateEvent() { duplicateEventsTotal.Inc() }
