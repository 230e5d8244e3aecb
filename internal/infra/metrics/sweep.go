package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(sweepRunsTotal, sweepOrdersChecked, sweepOrdersUpdated, sweepOrderFailures) }

var sweepRunsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "sweep_runs_total",
		Help: "Reconciliation sweep executions.",
	},
)

var sweepOrdersChecked = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "sweep_orders_checked_total",
		Help: "Orders whose upstream status was queried during sweeps.",
	},
)

var sweepOrdersUpdated = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sweep_orders_updated_total",
		Help: "Orders whose status changed during sweeps, labeled by new status.",
	},
	[]string{"status"},
)

var sweepOrderFailures = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "sweep_order_failures_total",
		Help: "Per-order upstream failures during sweeps (sweep continues).",
	},
)

func ObserveSweep(checked, failures int) {
	sweepRunsTotal.Inc()
	sweepOrdersChecked.Add(float64(checked))
	sweepOrderFailures.Add(float64(failures))
}

func IncSweepUpdated(status string) {
	sweepOrdersUpdated.WithLabelValues(norm(status)).Inc()
}
