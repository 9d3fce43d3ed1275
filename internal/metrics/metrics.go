// Package metrics exposes Prometheus collectors for the seedshot service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	jobsTotal                  *prometheus.CounterVec
	inFlightGenerations        prometheus.Gauge
	admissionRejectedTotal     prometheus.Counter
	renderStagesTotal          *prometheus.CounterVec
	renderDurationSeconds      prometheus.Histogram
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		jobsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seedshot_jobs_total",
				Help: "Total number of generation jobs reaching a terminal state, labeled by status.",
			},
			[]string{"status"},
		)

		inFlightGenerations = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "seedshot_inflight_generations",
				Help: "Number of generation jobs currently in processing state.",
			},
		)

		admissionRejectedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "seedshot_admission_rejected_total",
				Help: "Total submissions rejected because the concurrency ceiling was reached.",
			},
		)

		renderStagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seedshot_render_stages_total",
				Help: "Render pipeline stage outcomes, labeled by stage and outcome.",
			},
			[]string{"stage", "outcome"},
		)

		renderDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "seedshot_render_duration_seconds",
				Help:    "Histogram of end-to-end render session durations.",
				Buckets: []float64{5, 10, 20, 30, 45, 60, 90, 120},
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveJob increments the terminal-state counter for the given status.
func ObserveJob(status string) {
	jobsTotal.WithLabelValues(status).Inc()
}

// ObserveAdmissionRejected counts a rejected submission.
func ObserveAdmissionRejected() {
	admissionRejectedTotal.Inc()
}

// IncInFlight increments the in-flight generations gauge.
func IncInFlight() {
	inFlightGenerations.Inc()
}

// DecInFlight decrements the in-flight generations gauge.
func DecInFlight() {
	inFlightGenerations.Dec()
}

// ObserveRenderStage records a pipeline stage outcome.
func ObserveRenderStage(stage, outcome string) {
	renderStagesTotal.WithLabelValues(stage, outcome).Inc()
}

// ObserveRenderDuration records a full session duration.
func ObserveRenderDuration(d time.Duration) {
	renderDurationSeconds.Observe(d.Seconds())
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
