// File: internal/infra/metrics/cache.go
package metrics

import "github.com/prometheus/client_golang/prometheus"

var cacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "nexus",
	Subsystem: "cache",
	Name:      "requests_total",
	Help:      "Cache lookups by cache name and hit/miss outcome.",
}, []string{"cache", "outcome"})

func init() {
	register(cacheRequests)
}

func IncCacheRequest(cache, outcome string) {
	cacheRequests.WithLabelValues(norm(cache), norm(outcome)).Inc()
}
