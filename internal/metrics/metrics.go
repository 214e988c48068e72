// Package metrics registers the process's Prometheus collectors. Served at
// /metrics by the server package.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tutube_cache_hits_total",
		Help: "Items served from the audio cache without a fetch.",
	})
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tutube_cache_misses_total",
		Help: "Items that required materialization.",
	})
	FetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tutube_fetch_failures_total",
		Help: "Materializations that failed and left no cache entry.",
	})
	FetchesInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tutube_fetches_in_flight",
		Help: "Materializations currently holding a cache lock.",
	})
	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tutube_fetch_duration_seconds",
		Help:    "Wall time of successful materializations.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 12), // 0.5s .. ~17min
	})
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tutube_http_requests_total",
		Help: "HTTP responses by status code.",
	}, []string{"code"})
)
