// Package telemetry holds the Prometheus metrics for label validation.
package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	JobsSubmitted    = prometheus.NewCounter(prometheus.CounterOpts{Name: "labelcheck_jobs_submitted_total", Help: "Validation jobs accepted"})
	JobsCompleted    = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "labelcheck_jobs_completed_total", Help: "Validation jobs completed, by verdict"}, []string{"verdict"})
	JobsFailed       = prometheus.NewCounter(prometheus.CounterOpts{Name: "labelcheck_jobs_failed_total", Help: "Validation jobs that failed during processing"})
	InFlightGauge    = prometheus.NewGauge(prometheus.GaugeOpts{Name: "labelcheck_jobs_inflight", Help: "Validation jobs currently processing"})
	RateLimitRejects = prometheus.NewCounter(prometheus.CounterOpts{Name: "labelcheck_rate_limit_rejects_total", Help: "Requests rejected by rate limiter"})
	OCRDuration      = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "labelcheck_ocr_duration_seconds",
		Help:    "Time spent extracting label text",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"client"})
)

// Verdict label values for JobsCompleted.
const (
	VerdictPass = "pass"
	VerdictFail = "fail"
)

// Handler exposes /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			JobsSubmitted,
			JobsCompleted,
			JobsFailed,
			InFlightGauge,
			RateLimitRejects,
			OCRDuration,
		)
	})
	return promhttp.Handler()
}
