package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	pushesTotal           *prometheus.CounterVec
	pushLatencySeconds    *prometheus.HistogramVec
	detectionsTotal       *prometheus.CounterVec
	requestsTotal         *prometheus.CounterVec
	requestLatencySeconds *prometheus.HistogramVec
)

// RegisterMetrics initialises the Prometheus collectors for the push pipeline.
func RegisterMetrics() {
	registerOnce.Do(func() {
		pushesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leethub_pushes_total",
			Help: "Total number of push orchestrations by terminal status.",
		}, []string{"status"})

		pushLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leethub_push_latency_seconds",
			Help:    "Latency distribution of push orchestrations.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}, []string{"status"})

		detectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leethub_detections_total",
			Help: "Total number of page classifications by result.",
		}, []string{"result"})

		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leethub_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		requestLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leethub_request_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		prometheus.MustRegister(pushesTotal, pushLatencySeconds, detectionsTotal, requestsTotal, requestLatencySeconds)
	})
}

// Pushes exposes the counter of push outcomes.
func Pushes() *prometheus.CounterVec {
	RegisterMetrics()
	return pushesTotal
}

// PushLatency exposes the push latency histogram.
func PushLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return pushLatencySeconds
}

// Detections exposes the counter of page classification results.
func Detections() *prometheus.CounterVec {
	RegisterMetrics()
	return detectionsTotal
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// RequestLatency exposes the latency histogram for API requests.
func RequestLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return requestLatencySeconds
}
