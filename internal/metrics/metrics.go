package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FeedFetches counts upstream fetches by engine type and result
	// ("ok" or an error kind).
	FeedFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dealerfeed_feed_fetches_total",
		Help: "Upstream feed fetches by engine type and result",
	}, []string{"engine", "result"})

	FeedFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dealerfeed_feed_fetch_duration_seconds",
		Help:    "Upstream feed fetch duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 9), // 50ms to ~13s
	}, []string{"engine"})

	ParseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dealerfeed_parse_duration_seconds",
		Help:    "Feed document parse duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	CatalogVehicles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dealerfeed_catalog_vehicles",
		Help: "Vehicles in the catalog currently served",
	})

	CatalogDeltas = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dealerfeed_catalog_deltas_total",
		Help: "Listing changes between consecutive catalogs by type",
	}, []string{"type"})

	QueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dealerfeed_catalog_query_duration_seconds",
		Help:    "Catalog filter, facet and sort duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~400ms
	})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dealerfeed_http_rate_limited_total",
		Help: "Requests rejected by the per-IP rate limiter",
	})

	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dealerfeed_websocket_clients",
		Help: "Connected websocket clients",
	})
)
