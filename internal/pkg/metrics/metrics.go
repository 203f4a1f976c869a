package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SearchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "radar_searches_total",
		Help: "Viewport search cycles by outcome",
	}, []string{"outcome"}) // cache_hit, external, rate_limited, suppressed, error

	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "radar_spot_cache_hits_total",
		Help: "Approximate-location cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "radar_spot_cache_misses_total",
		Help: "Approximate-location cache misses",
	})

	LimiterVetoesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "radar_limiter_vetoes_total",
		Help: "External calls skipped because a quota window was full",
	})

	PlacesRequestDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "radar_places_request_duration_ms",
		Help:    "External places provider call duration in milliseconds",
		Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000, 10000},
	})
	InventoryFetchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "radar_inventory_fetches_total",
		Help: "Inventory backend fetches",
	})

	PushReconnectsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "radar_push_reconnects_total",
		Help: "Live-update channel reconnect attempts",
	})
)

func init() {
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(LimiterVetoesTotal)
	prometheus.MustRegister(PlacesRequestDurationMs)
	prometheus.MustRegister(InventoryFetchesTotal)
	prometheus.MustRegister(PushReconnectsTotal)
}

// Serve поднимает отдельный HTTP-листенер с /metrics
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
