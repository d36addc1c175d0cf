package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var actionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_store_actions_total",
		Help: "Total number of actions dispatched to item stores",
	},
	[]string{"store", "action"},
)
