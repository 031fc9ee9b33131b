package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "ukim"

// MetricsService owns the Prometheus registry. Every method is a no-op on a
// nil receiver.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheDuration   *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	contentWrites   *prometheus.CounterVec
	uploads         *prometheus.CounterVec
	uploadBytes     *prometheus.CounterVec
	thumbnails      *prometheus.CounterVec
	sweptFiles      prometheus.Counter
	sweeps          prometheus.Counter
}

// NewMetricsService registers the API collectors on a private registry.
func NewMetricsService() *MetricsService {
	m := &MetricsService{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "path", "status"}),
		cacheDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "operation_duration_seconds",
			Help:      "Listing cache latency by operation",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5},
		}, []string{"op"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Listing cache lookups by result",
		}, []string{"result"}),
		contentWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "content",
			Name:      "writes_total",
			Help:      "Content mutations by type and operation",
		}, []string{"type", "op"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "uploads",
			Name:      "total",
			Help:      "Upload attempts by kind and outcome",
		}, []string{"kind", "outcome"}),
		uploadBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "uploads",
			Name:      "bytes_total",
			Help:      "Bytes stored by accepted uploads",
		}, []string{"kind"}),
		thumbnails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "uploads",
			Name:      "thumbnails_total",
			Help:      "Thumbnail jobs by outcome",
		}, []string{"outcome"}),
		sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "sweeper",
			Name:      "runs_total",
			Help:      "Completed orphan upload sweeps",
		}),
		sweptFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "sweeper",
			Name:      "removed_files_total",
			Help:      "Orphan uploads removed by the sweeper",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration, m.requestTotal,
		m.cacheDuration, m.cacheLookups,
		m.contentWrites,
		m.uploads, m.uploadBytes, m.thumbnails,
		m.sweeps, m.sweptFiles,
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, code).Inc()
}

// RecordCacheOperation records a cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheDuration.WithLabelValues("get").Observe(duration.Seconds())
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveCacheWrite records a cache store.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheDuration.WithLabelValues("set").Observe(duration.Seconds())
}

// RecordContentWrite counts a create, update or delete of typeSlug content.
func (m *MetricsService) RecordContentWrite(typeSlug, op string) {
	if m == nil {
		return
	}
	m.contentWrites.WithLabelValues(typeSlug, op).Inc()
}

// RecordUpload counts an upload attempt; size is only added for accepted files.
func (m *MetricsService) RecordUpload(kind, outcome string, size int64) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(kind, outcome).Inc()
	if outcome == "accepted" {
		m.uploadBytes.WithLabelValues(kind).Add(float64(size))
	}
}

// RecordThumbnail counts a finished thumbnail job.
func (m *MetricsService) RecordThumbnail(ok bool) {
	if m == nil {
		return
	}
	outcome := "failed"
	if ok {
		outcome = "created"
	}
	m.thumbnails.WithLabelValues(outcome).Inc()
}

// RecordSweep counts a finished sweep and the files it removed.
func (m *MetricsService) RecordSweep(removed int) {
	if m == nil {
		return
	}
	m.sweeps.Inc()
	m.sweptFiles.Add(float64(removed))
}
