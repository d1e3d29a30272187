package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records every hook as a Prometheus metric on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	QueriesTotal    *prometheus.CounterVec
	QueryDuration   *prometheus.HistogramVec
	QueriesInFlight *prometheus.GaugeVec
	RendersTotal    *prometheus.CounterVec
	RenderDuration  *prometheus.HistogramVec

	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
	CacheBytes  *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics returns metrics registered on a fresh registry, together with
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		QueriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "causeway_queries_total",
			Help: "Total number of causal queries answered",
		}, []string{"kind", "route", "status"}),
		QueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "causeway_query_duration_seconds",
			Help:    "Query answering duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"kind"}),
		QueriesInFlight: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "causeway_queries_in_flight",
			Help: "Queries currently being answered",
		}, []string{"kind"}),
		RendersTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "causeway_renders_total",
			Help: "Total number of rendered diagrams",
		}, []string{"format", "status"}),
		RenderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "causeway_render_duration_seconds",
			Help:    "Diagram rendering duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"format"}),
		CacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "causeway_cache_hits_total",
			Help: "Cache hits by key type",
		}, []string{"key_type"}),
		CacheMisses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "causeway_cache_misses_total",
			Help: "Cache misses by key type",
		}, []string{"key_type"}),
		CacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "causeway_cache_written_bytes_total",
			Help: "Bytes written to the cache by key type",
		}, []string{"key_type"}),
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "causeway_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"method", "route", "code"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "causeway_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnQueryStart(_ context.Context, kind string) {
	m.QueriesInFlight.WithLabelValues(kind).Inc()
}

func (m *Metrics) OnQueryComplete(_ context.Context, kind, route string, d time.Duration, err error) {
	m.QueriesInFlight.WithLabelValues(kind).Dec()
	m.QueriesTotal.WithLabelValues(kind, route, status(err)).Inc()
	m.QueryDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *Metrics) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	m.RendersTotal.WithLabelValues(format, status(err)).Inc()
	m.RenderDuration.WithLabelValues(format).Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheHits.WithLabelValues(keyType).Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheMisses.WithLabelValues(keyType).Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ QueryHooks = (*Metrics)(nil)
	_ CacheHooks = (*Metrics)(nil)
	_ HTTPHooks  = (*Metrics)(nil)
)
