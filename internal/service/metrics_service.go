package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP boundary and the fetch pipeline.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	fetchDuration     *prometheus.HistogramVec
	fetchFailures     *prometheus.CounterVec
	orphanedGrades    prometheus.Gauge
	degradedSnapshots prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	fetchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "collection_fetch_duration_seconds",
		Help:    "Duration of reads against the collection store",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection", "outcome"})

	fetchFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "collection_fetch_failures_total",
		Help: "Collection reads that returned no usable data",
	}, []string{"collection"})

	orphanedGrades := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "orphaned_grades",
		Help: "Grades referencing a missing assignment in the latest snapshot",
	})

	degradedSnapshots := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "degraded_snapshots_total",
		Help: "Snapshots computed with at least one missing collection",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, fetchDuration, fetchFailures, orphanedGrades, degradedSnapshots, goroutines)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		fetchDuration:     fetchDuration,
		fetchFailures:     fetchFailures,
		orphanedGrades:    orphanedGrades,
		degradedSnapshots: degradedSnapshots,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveCollectionFetch records one store read.
func (m *MetricsService) ObserveCollectionFetch(collection string, ok bool, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
		m.fetchFailures.WithLabelValues(collection).Inc()
	}
	m.fetchDuration.WithLabelValues(collection, outcome).Observe(duration.Seconds())
}

// RecordSnapshot publishes integrity and degradation signals of a computed snapshot.
func (m *MetricsService) RecordSnapshot(orphaned int, degraded bool) {
	if m == nil {
		return
	}
	m.orphanedGrades.Set(float64(orphaned))
	if degraded {
		m.degradedSnapshots.Inc()
	}
}
