package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var bulkActions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "invoicer_bulk_actions_total",
		Help: "Bulk invoice actions processed, by action name and outcome.",
	},
	[]string{"action", "outcome"},
)

// ObserveBulkAction records one dispatched bulk action.
func ObserveBulkAction(action string, success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	bulkActions.WithLabelValues(action, outcome).Inc()
}
