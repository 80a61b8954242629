package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for task run observations.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// Merge action labels.
const (
	ActionInserted = "inserted"
	ActionMerged   = "merged"
	ActionFailed   = "failed"
)

// Collector exposes Prometheus metrics for inbound HTTP requests, scheduled
// task runs and collection activity. A nil *Collector is safe to use; all
// observation methods become no-ops.
type Collector struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	taskRuns        *prometheus.CounterVec
	taskDuration    *prometheus.HistogramVec
	recordsTotal    *prometheus.CounterVec
	projectsTracked prometheus.Gauge
}

// New constructs a collector with default histograms/counters.
func New() (*Collector, error) {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "trendradar",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for inbound HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trendradar",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of inbound HTTP requests.",
	}, []string{"method", "path", "status"})

	taskRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trendradar",
		Subsystem: "scheduler",
		Name:      "task_runs_total",
		Help:      "Task executions by name and outcome.",
	}, []string{"task", "outcome"})

	taskDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "trendradar",
		Subsystem: "scheduler",
		Name:      "task_duration_seconds",
		Help:      "Duration of completed task executions.",
		Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
	}, []string{"task"})

	recordsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trendradar",
		Subsystem: "collector",
		Name:      "records_total",
		Help:      "Raw records processed per source and merge action.",
	}, []string{"source", "action"})

	projectsTracked := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trendradar",
		Subsystem: "collector",
		Name:      "projects_tracked",
		Help:      "Number of projects currently in the store.",
	})

	for _, c := range []prometheus.Collector{
		requestDuration, requestTotal, taskRuns, taskDuration, recordsTotal, projectsTracked,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return &Collector{
		registry:        registry,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		taskRuns:        taskRuns,
		taskDuration:    taskDuration,
		recordsTotal:    recordsTotal,
		projectsTracked: projectsTracked,
	}, nil
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler to record HTTP metrics.
func (c *Collector) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.status)
		path := r.URL.Path

		c.requestTotal.WithLabelValues(r.Method, path, status).Inc()
		c.requestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
	})
}

// ObserveTaskRun records one task execution outcome and its duration.
func (c *Collector) ObserveTaskRun(task, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.taskRuns.WithLabelValues(task, outcome).Inc()
	if outcome != OutcomeSkipped {
		c.taskDuration.WithLabelValues(task).Observe(duration.Seconds())
	}
}

// ObserveRecord counts one raw record by source and merge action.
func (c *Collector) ObserveRecord(source, action string) {
	if c == nil {
		return
	}
	c.recordsTotal.WithLabelValues(source, action).Inc()
}

// SetProjectsTracked updates the store size gauge.
func (c *Collector) SetProjectsTracked(n int) {
	if c == nil {
		return
	}
	c.projectsTracked.Set(float64(n))
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
