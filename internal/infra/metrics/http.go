// File: internal/infra/metrics/http.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nexus",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route pattern and status class.",
	}, []string{"route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "nexus",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

func init() {
	register(httpRequests, httpDuration)
}

func ObserveHTTP(route string, statusCode int, elapsed time.Duration) {
	httpRequests.WithLabelValues(norm(route), statusClass(statusCode)).Inc()
	httpDuration.WithLabelValues(norm(route)).Observe(elapsed.Seconds())
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
