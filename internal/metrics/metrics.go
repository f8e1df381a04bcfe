package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SourceFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_source_fetches_total",
		Help: "Upstream catalog source fetches by source and result.",
	}, []string{"source", "result"})

	CatalogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_catalog_products",
		Help: "Number of normalized products in the current catalog.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_http_requests_total",
		Help: "Handled HTTP requests by path and status code.",
	}, []string{"path", "code"})
)
