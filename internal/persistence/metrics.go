package persistence

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opLoad = "load"
	opSave = "save"

	resultOK      = "ok"
	resultMiss    = "miss"
	resultCorrupt = "corrupt"
	resultError   = "error"
)

var operationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_persistence_operations_total",
		Help: "Storage slot loads and saves by slot, operation, and result.",
	},
	[]string{"slot", "operation", "result"},
)

func observe(slot, operation, result string) {
	operationsTotal.WithLabelValues(slot, operation, result).Inc()
}
