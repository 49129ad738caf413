package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	requestsTotal *prometheus.CounterVec
	retriesTotal  *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	holdings      prometheus.Histogram
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		requestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgarpull_requests_total",
				Help: "Total number of repository requests by endpoint",
			},
			[]string{"endpoint"},
		),
		retriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgarpull_retries_total",
				Help: "Total number of retried repository requests by endpoint",
			},
			[]string{"endpoint"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgarpull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edgarpull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		holdings: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "edgarpull_filing_holdings",
				Help:    "Holdings count per parsed filing",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
	}
}

// RecordRequest records a repository request.
func (r *Recorder) RecordRequest(endpoint string) {
	r.requestsTotal.WithLabelValues(endpoint).Inc()
}

// RecordRetry records a retried repository request.
func (r *Recorder) RecordRetry(endpoint string) {
	r.retriesTotal.WithLabelValues(endpoint).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordHoldings records the holdings count of a parsed filing.
func (r *Recorder) RecordHoldings(count int) {
	r.holdings.Observe(float64(count))
}
