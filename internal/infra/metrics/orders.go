// File: internal/infra/metrics/orders.go
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ordersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nexus",
		Subsystem: "orders",
		Name:      "total",
		Help:      "Orders by status transition (pending on create, terminal on callback).",
	}, []string{"status"})

	callbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nexus",
		Subsystem: "orders",
		Name:      "gateway_callbacks_total",
		Help:      "Gateway notification outcomes as answered to the gateway.",
	}, []string{"result"})

	revenueFenTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nexus",
		Subsystem: "orders",
		Name:      "revenue_fen_total",
		Help:      "Recognized revenue in fen, counted when the entitlement commits.",
	}, []string{"plan"})
)

func init() {
	register(ordersTotal, callbacksTotal, revenueFenTotal)
}

func IncOrder(status string) {
	ordersTotal.WithLabelValues(norm(status)).Inc()
}

func IncCallback(result string) {
	callbacksTotal.WithLabelValues(norm(result)).Inc()
}

func AddRevenue(plan string, amountFen int64) {
	revenueFenTotal.WithLabelValues(norm(plan)).Add(float64(amountFen))
}
