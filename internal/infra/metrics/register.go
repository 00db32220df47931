// File: internal/infra/metrics/register.go
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Collectors queue up via init() in each metrics file and are registered
// once at startup. Keeps wiring out of main and avoids double-registration
// panics in tests.
var collectors []prometheus.Collector

func register(cs ...prometheus.Collector) {
	collectors = append(collectors, cs...)
}

// MustRegister attaches every queued collector to the given registry.
// Call exactly once.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(collectors...)
}

// norm keeps label values low-cardinality and consistent.
func norm(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return "unknown"
	}
	return strings.ReplaceAll(s, " ", "_")
}
