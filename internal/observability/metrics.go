package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	checksTotal        *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the HTTP surface
// and the validation sub-checks.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skillmatch",
			Name:      "http_requests_total",
			Help:      "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "skillmatch",
			Name:      "http_latency_seconds",
			Help:      "Latency distribution for API requests.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"method", "route"})

		checksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skillmatch",
			Name:      "validation_checks_total",
			Help:      "Validation sub-check outcomes.",
		}, []string{"check", "outcome"})

		prometheus.MustRegister(httpRequestsTotal, httpLatencySeconds, checksTotal)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// ValidationChecks exposes the sub-check outcome counter.
func ValidationChecks() *prometheus.CounterVec {
	RegisterMetrics()
	return checksTotal
}
