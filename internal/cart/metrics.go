package cart

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	actionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_actions_total",
			Help: "Total number of cart actions applied, by action type",
		},
		[]string{"type"},
	)

	cartLines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cart_lines",
			Help: "Current number of distinct lines in the cart",
		},
	)
)
