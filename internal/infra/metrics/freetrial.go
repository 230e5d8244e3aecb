package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(freeTrialRequestsTotal) }

var freeTrialRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "free_trial_requests_total",
		Help: "Free-trial requests by outcome.",
	},
	[]string{"result"}, // 'granted', 'already_used', 'failed', 'rate_limited'
)

func IncFreeTrial(result string) {
	freeTrialRequestsTotal.WithLabelValues(norm(result)).Inc()
}
