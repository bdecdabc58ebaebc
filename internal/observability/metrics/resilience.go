package metrics

import "github.com/prometheus/client_golang/prometheus"

// ResilienceMetrics counts retries and circuit breaker transitions of
// outbound calls. It satisfies resilience.Observer.
type ResilienceMetrics struct {
	service      string
	retriesTotal *prometheus.CounterVec
	breakerTotal *prometheus.CounterVec
}

func NewResilienceMetrics(service string, registerer prometheus.Registerer) *ResilienceMetrics {
	retriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "glc",
			Subsystem: "resilience",
			Name:      "retry_attempts_total",
			Help:      "Total retried outbound calls by operation.",
		},
		[]string{"service", "operation"},
	)
	breakerTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "glc",
			Subsystem: "resilience",
			Name:      "breaker_transitions_total",
			Help:      "Total circuit breaker state changes.",
		},
		[]string{"service", "operation", "from", "to"},
	)
	registerer.MustRegister(retriesTotal, breakerTotal)

	return &ResilienceMetrics{
		service:      service,
		retriesTotal: retriesTotal,
		breakerTotal: breakerTotal,
	}
}

func (m *ResilienceMetrics) RetryAttempt(operation string) {
	m.retriesTotal.WithLabelValues(m.service, operation).Inc()
}

func (m *ResilienceMetrics) BreakerStateChange(operation, from, to string) {
	m.breakerTotal.WithLabelValues(m.service, operation, from, to).Inc()
}
