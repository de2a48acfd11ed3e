package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	requestsTotal         *prometheus.CounterVec
	requestLatencySeconds *prometheus.HistogramVec
	authFailuresTotal     *prometheus.CounterVec
	uploadRejectedTotal   *prometheus.CounterVec
	uploadLatencySeconds  prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors used by the portal API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		requestLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_request_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		authFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_auth_failures_total",
			Help: "Total number of rejected authentication or authorization attempts.",
		}, []string{"reason"})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_upload_rejected_total",
			Help: "Total number of file uploads rejected by validation.",
		}, []string{"reason"})

		uploadLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "portal_upload_latency_seconds",
			Help:    "Latency distribution for stored file uploads.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		})

		prometheus.MustRegister(requestsTotal, requestLatencySeconds, authFailuresTotal, uploadRejectedTotal, uploadLatencySeconds)
	})
}

// Requests exposes the counter for served requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// RequestLatency exposes the latency histogram for served requests.
func RequestLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return requestLatencySeconds
}

// AuthFailures exposes the counter for rejected auth attempts.
func AuthFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return authFailuresTotal
}

// UploadRejected exposes the counter for rejected uploads.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}

// UploadLatency exposes the histogram tracking upload durations.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySeconds
}
