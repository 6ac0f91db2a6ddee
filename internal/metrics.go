package internal

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the collectors of one App. Each App owns its registry so
// several apps (and tests) never collide on registration.
type metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	pageCache *prometheus.CounterVec
	errors    *prometheus.CounterVec
	path      string
}

func newMetrics(path string) *metrics {
	if path == "" {
		path = "/metrics"
	}
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &metrics{
		registry: reg,
		path:     path,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stick_requests_total",
			Help: "Dispatched requests by response status and request mode.",
		}, []string{"status", "mode"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stick_request_duration_seconds",
			Help:    "Time from request start to flushed response.",
			Buckets: prometheus.DefBuckets,
		}, []string{"mode"}),
		pageCache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stick_page_cache_total",
			Help: "Page cache lookups and writes by result.",
		}, []string{"result"}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stick_errors_total",
			Help: "Error responses by status code.",
		}, []string{"code"}),
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *metrics) observe(c Context, elapsed time.Duration) {
	if m == nil {
		return
	}
	mode := string(c.Mode())
	m.requests.WithLabelValues(strconv.Itoa(c.Status()), mode).Inc()
	m.duration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

func (m *metrics) pageCacheResult(result string) {
	if m == nil {
		return
	}
	m.pageCache.WithLabelValues(result).Inc()
}

func (m *metrics) errorCode(code int) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(strconv.Itoa(code)).Inc()
}

// Registry returns the registry behind WithMetrics, or nil when metrics
// are disabled.
func (a *App) Registry() *prometheus.Registry {
	if a.metrics == nil {
		return nil
	}
	return a.metrics.registry
}
