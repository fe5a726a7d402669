package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce               sync.Once
	progressCalculationsTotal  *prometheus.CounterVec
	progressLatencySeconds     *prometheus.HistogramVec
	completionTransitionsTotal *prometheus.CounterVec
	certificatesIssuedTotal    prometheus.Counter
	httpRequestsTotal          *prometheus.CounterVec
	httpLatencySeconds         *prometheus.HistogramVec
)

// RegisterMetrics initialises the Prometheus collectors used by the progress
// engine.
func RegisterMetrics() {
	registerOnce.Do(func() {
		progressCalculationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progress_calculations_total",
			Help: "Total number of per-course progress calculations by outcome.",
		}, []string{"outcome"})

		progressLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "progress_calculation_latency_seconds",
			Help:    "Latency distribution for per-course progress calculations.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"operation"})

		completionTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "completion_transitions_total",
			Help: "Total number of enrollment completion-state transitions by direction.",
		}, []string{"direction"})

		certificatesIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "certificates_issued_total",
			Help: "Total number of certificate records issued.",
		})

		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		prometheus.MustRegister(
			progressCalculationsTotal,
			progressLatencySeconds,
			completionTransitionsTotal,
			certificatesIssuedTotal,
			httpRequestsTotal,
			httpLatencySeconds,
		)
	})
}

// ProgressCalculations exposes the counter for per-course calculations.
func ProgressCalculations() *prometheus.CounterVec {
	RegisterMetrics()
	return progressCalculationsTotal
}

// ProgressLatency exposes the latency histogram for engine operations.
func ProgressLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return progressLatencySeconds
}

// CompletionTransitions exposes the counter for completion-state transitions.
func CompletionTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return completionTransitionsTotal
}

// CertificatesIssued exposes the counter for issued certificates.
func CertificatesIssued() prometheus.Counter {
	RegisterMetrics()
	return certificatesIssuedTotal
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}
