package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry agrupa los collectors del servicio. Cada router crea el suyo
// para que los tests no choquen con el registry global.
type Registry struct {
	reg *prometheus.Registry

	lifecycleUpdates     *prometheus.CounterVec
	lifecycleTransitions *prometheus.CounterVec
	httpRequests         *prometheus.CounterVec
	httpDuration         *prometheus.HistogramVec
}

func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Registry{
		reg: reg,
		lifecycleUpdates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shelter_lifecycle_updates_total",
			Help: "Lifecycle update requests by outcome (applied, noop, confirmation_required, not_found, invalid, error)",
		}, []string{"outcome"}),
		lifecycleTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shelter_lifecycle_transitions_total",
			Help: "Applied status/location transitions by field and values",
		}, []string{"field", "from", "to"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shelter_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code",
		}, []string{"method", "route", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shelter_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// UpdateOutcome implementa animals.Observer.
func (r *Registry) UpdateOutcome(outcome string) {
	r.lifecycleUpdates.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// Transition implementa animals.Observer.
func (r *Registry) Transition(field, from, to string) {
	r.lifecycleTransitions.WithLabelValues(
		normalizeLabel(field),
		normalizeLabel(from),
		normalizeLabel(to),
	).Inc()
}

// Middleware mide requests usando el route pattern de chi (no el path crudo)
// para no explotar la cardinalidad con IDs.
func (r *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, req.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, req)

		route := "unmatched"
		if rc := chi.RouteContext(req.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		r.httpRequests.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
		r.httpDuration.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler expone /metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

func normalizeLabel(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "none"
	}
	return v
}
