package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_loads_total",
			Help: "Catalog load attempts by source and result",
		},
		[]string{"source", "result"},
	)

	productsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_products",
		Help: "Number of products currently held in the catalog",
	})
)
