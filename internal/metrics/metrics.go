// Package metrics exports resolution and HTTP metrics to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentstation/driftmap/pkg/catalogs"
	"github.com/agentstation/driftmap/pkg/engine"
	"github.com/agentstation/driftmap/pkg/exceptions"
)

const namespace = "driftmap"

// Recorder implements engine.Observer and records HTTP traffic.
type Recorder struct {
	gatherer prometheus.Gatherer

	batchesTotal    *prometheus.CounterVec
	entitiesTotal   *prometheus.CounterVec
	droppedBlocks   *prometheus.CounterVec
	batchDuration   *prometheus.HistogramVec
	providerErrors  *prometheus.CounterVec
	appliedTotal    *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var _ engine.Observer = (*Recorder)(nil)

// NewRecorder registers the driftmap collectors on a fresh registry, along
// with the Go runtime and process collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return newRecorder(reg, reg)
}

func newRecorder(reg prometheus.Registerer, g prometheus.Gatherer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		gatherer: g,
		batchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Total number of resolution batches",
		}, []string{"entity_type"}),
		entitiesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_resolved_total",
			Help:      "Entities resolved, by canonical action",
		}, []string{"entity_type", "action"}),
		droppedBlocks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "log_blocks_dropped_total",
			Help:      "Change log blocks the parser could not interpret",
		}, []string{"entity_type"}),
		batchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Duration of resolution batches",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"entity_type"}),
		providerErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Catalog and rule provider failures",
		}, []string{"entity_type", "operation"}),
		appliedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "apply_writes_total",
			Help:      "Apply sink writes, by outcome",
		}, []string{"entity_type", "outcome"}),
		requestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method and status",
		}, []string{"method", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// ObserveBatch implements engine.Observer.
func (r *Recorder) ObserveBatch(entityType catalogs.EntityType, stats engine.Statistics, dropped int, elapsed time.Duration) {
	t := entityType.String()
	r.batchesTotal.WithLabelValues(t).Inc()
	for _, a := range exceptions.Actions() {
		r.entitiesTotal.WithLabelValues(t, a.String()).Add(float64(stats.Count(a)))
	}
	r.droppedBlocks.WithLabelValues(t).Add(float64(dropped))
	r.batchDuration.WithLabelValues(t).Observe(elapsed.Seconds())
}

// ObserveApply implements engine.Observer.
func (r *Recorder) ObserveApply(entityType catalogs.EntityType, report engine.ApplyReport) {
	t := entityType.String()
	r.appliedTotal.WithLabelValues(t, "changed").Add(float64(report.Changed))
	r.appliedTotal.WithLabelValues(t, "unchanged").Add(float64(report.Unchanged))
	r.appliedTotal.WithLabelValues(t, "failed").Add(float64(report.Failed))
}

// ObserveError implements engine.Observer.
func (r *Recorder) ObserveError(entityType catalogs.EntityType, operation string) {
	r.providerErrors.WithLabelValues(entityType.String(), operation).Inc()
}

// ObserveRequest records one served HTTP request.
func (r *Recorder) ObserveRequest(method string, status int, elapsed time.Duration) {
	r.requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	r.requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
