package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/alchemorsel/recipebook/internal/ports/outbound"
)

// MetricsCollector handles Prometheus metrics collection. Collectors are
// registered on a private registry so several collectors can coexist in one
// process (tests, the stub server next to a client).
type MetricsCollector struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	// Remote service metrics
	remoteRequestsTotal   *prometheus.CounterVec
	remoteRequestDuration *prometheus.HistogramVec
	breakerState          *prometheus.GaugeVec

	// Personalization metrics
	staleResponsesTotal    *prometheus.CounterVec
	resolutionGapsTotal    *prometheus.CounterVec
	likeNotificationsTotal *prometheus.CounterVec
	persistenceErrorsTotal *prometheus.CounterVec

	// HTTP metrics, stub server only
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var _ outbound.MetricsRecorder = (*MetricsCollector)(nil)

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(logger *zap.Logger) *MetricsCollector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &MetricsCollector{
		logger:   logger.Named("metrics"),
		registry: registry,

		remoteRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipebook_remote_requests_total",
				Help: "Total number of requests to the personalization service",
			},
			[]string{"endpoint", "outcome"},
		),
		remoteRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recipebook_remote_request_duration_seconds",
				Help:    "Personalization service request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		breakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "recipebook_remote_breaker_state",
				Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),

		staleResponsesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipebook_stale_responses_total",
				Help: "Responses discarded because a newer request superseded them",
			},
			[]string{"kind"},
		),
		resolutionGapsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipebook_resolution_gaps_total",
				Help: "Remote identifiers absent from the local catalog",
			},
			[]string{"kind"},
		),
		likeNotificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipebook_like_notifications_total",
				Help: "Like notifications sent to the personalization service",
			},
			[]string{"outcome"},
		),
		persistenceErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipebook_persistence_errors_total",
				Help: "Failed reads and writes of session entries",
			},
			[]string{"op", "key"},
		),

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
	}
}

// HTTPMiddleware creates a chi middleware for HTTP metrics collection
func (m *MetricsCollector) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		statusCode := strconv.Itoa(status)

		m.httpRequestsTotal.WithLabelValues(r.Method, path, statusCode).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, path, statusCode).Observe(time.Since(start).Seconds())
	})
}

// RemoteRequest records one call to the personalization service
func (m *MetricsCollector) RemoteRequest(endpoint, outcome string, duration time.Duration) {
	m.remoteRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	m.remoteRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// BreakerState records a circuit breaker transition
func (m *MetricsCollector) BreakerState(name string, state int) {
	m.breakerState.WithLabelValues(name).Set(float64(state))
}

// StaleResponse counts a discarded superseded response
func (m *MetricsCollector) StaleResponse(kind string) {
	m.staleResponsesTotal.WithLabelValues(kind).Inc()
}

// ResolutionGap counts identifiers that did not resolve
func (m *MetricsCollector) ResolutionGap(kind string, count int) {
	if count <= 0 {
		return
	}
	m.resolutionGapsTotal.WithLabelValues(kind).Add(float64(count))
}

// LikeNotification counts a like notification by outcome
func (m *MetricsCollector) LikeNotification(outcome string) {
	m.likeNotificationsTotal.WithLabelValues(outcome).Inc()
}

// PersistenceError counts a failed storage operation
func (m *MetricsCollector) PersistenceError(op, key string) {
	m.persistenceErrorsTotal.WithLabelValues(op, key).Inc()
}

// Registry returns the registry the collectors live on
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
