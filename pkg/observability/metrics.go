package observability

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a Prometheus registry with the explorer's collectors.
type Metrics struct {
	registry *prometheus.Registry

	navigations *prometheus.CounterVec
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	sessions    prometheus.Gauge
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		navigations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gtox_navigation_events_total",
				Help: "Navigation lifecycle events by type.",
			},
			[]string{"event"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gtox_http_requests_total",
				Help: "HTTP requests by route and status code.",
			},
			[]string{"method", "route", "status"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gtox_http_request_duration_seconds",
				Help:    "HTTP request latency by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gtox_sessions",
			Help: "Uploaded datasets currently held by the server.",
		}),
	}
	m.registry.MustRegister(m.navigations, m.requests, m.latency, m.sessions)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SetSessions records the number of live datasets.
func (m *Metrics) SetSessions(n int) { m.sessions.Set(float64(n)) }

// Hooks returns lifecycle hooks that count navigation events. When logger is
// non-nil, failures and recoveries are logged too.
func (m *Metrics) Hooks(logger *slog.Logger) domain.LifecycleHooks {
	count := func(_ context.Context, e *domain.NavigationEvent) {
		m.navigations.WithLabelValues(string(e.Type)).Inc()
	}
	hooks := domain.LifecycleHooks{
		OnResolve: count,
		OnCommit:  count,
		OnDiscard: count,
		OnLoad:    count,
		OnRecover: func(ctx context.Context, e *domain.NavigationEvent) {
			count(ctx, e)
			if logger != nil {
				logger.Info("node recovered by replay", "session_id", e.SessionID, "path", e.Address)
			}
		},
		OnFailure: func(ctx context.Context, e *domain.NavigationEvent) {
			count(ctx, e)
			if logger != nil {
				logger.Warn("navigation failed", "session_id", e.SessionID, "path", e.Address, "err", e.Err)
			}
		},
	}
	return hooks
}

// Middleware records request counts and latency keyed by the chi route
// pattern, so path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
