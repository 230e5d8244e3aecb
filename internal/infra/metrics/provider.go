package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(providerCallLatencyMs, providerErrorsTotal) }

var providerCallLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "provider_call_latency_ms",
		Help:    "Panel HTTP call latency distribution in milliseconds.",
		Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
	},
	[]string{"provider", "action", "success"},
)

var providerErrorsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "provider_errors_total",
		Help: "Panel call failures by kind (timeout/transport/parse/upstream/no_order/no_status).",
	},
	[]string{"provider", "kind"},
)

func ObserveProviderCall(provider, action string, elapsed time.Duration, success bool) {
	providerCallLatencyMs.
		WithLabelValues(norm(provider), action, strconv.FormatBool(success)).
		Observe(float64(elapsed.Milliseconds()))
}

func IncProviderError(provider, kind string) {
	providerErrorsTotal.WithLabelValues(norm(provider), kind).Inc()
}
