package observability

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce      sync.Once
	executionsTotal   *prometheus.CounterVec
	executionSeconds  *prometheus.HistogramVec
	cameraProbesTotal *prometheus.CounterVec
	sessionsActive    prometheus.Gauge
	sessionsFinished  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the contest engine.
func RegisterMetrics() {
	registerOnce.Do(func() {
		executionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contest",
			Subsystem: "execution",
			Name:      "requests_total",
			Help:      "Run and submit calls handed to the grader.",
		}, []string{"mode", "outcome"})

		executionSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "contest",
			Subsystem: "execution",
			Name:      "duration_seconds",
			Help:      "Grader latency for run and submit calls.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"mode"})

		cameraProbesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contest",
			Subsystem: "camera",
			Name:      "probes_total",
			Help:      "Camera permission probes by outcome.",
		}, []string{"outcome"})

		sessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "contest",
			Subsystem: "session",
			Name:      "active",
			Help:      "Contest attempts currently registered.",
		})

		sessionsFinished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contest",
			Subsystem: "session",
			Name:      "finished_total",
			Help:      "Finished contest attempts by reason.",
		}, []string{"reason"})

		prometheus.MustRegister(executionsTotal, executionSeconds, cameraProbesTotal, sessionsActive, sessionsFinished)
	})
}

// Executions exposes the run/submit counter.
func Executions() *prometheus.CounterVec {
	RegisterMetrics()
	return executionsTotal
}

// ExecutionLatency exposes the grader latency histogram.
func ExecutionLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return executionSeconds
}

func CameraProbes() *prometheus.CounterVec {
	RegisterMetrics()
	return cameraProbesTotal
}

func SessionsActive() prometheus.Gauge {
	RegisterMetrics()
	return sessionsActive
}

func SessionsFinished() *prometheus.CounterVec {
	RegisterMetrics()
	return sessionsFinished
}

// Handler serves the default registry.
func Handler() http.Handler {
	RegisterMetrics()
	return promhttp.Handler()
}
