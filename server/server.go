// Package server assembles the HTTP router of the task service: routes, rate limiting,
// Prometheus metrics, request ids, access logging and CORS.
package server

import (
	"context"
	"net/http"

	"KanbanService/handlers"
	"KanbanService/response"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// A function type that represents a handler function with metrics.
type HandlerFuncWithMetrics func(http.ResponseWriter, *http.Request, *prometheus.CounterVec, *prometheus.CounterVec)

// Metrics holds the counters shared by every endpoint and the registry serving them.
type Metrics struct {
	Registry        *prometheus.Registry
	EndPointCounter *prometheus.CounterVec
	ErrorCounter    *prometheus.CounterVec
}

// NewMetrics creates the endpoint and error counters on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		EndPointCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kanban_endpoint_calls_total",
			Help: "Total number of calls per endpoint.",
		}, []string{"endpoint"}),
		ErrorCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kanban_errors_total",
			Help: "Total number of errors occurred per endpoint.",
		}, []string{"endpoint"}),
	}
	m.Registry.MustRegister(
		m.EndPointCounter,
		m.ErrorCounter,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Options configures New.
type Options struct {
	// RateLimit is the number of requests per second allowed across the API.
	RateLimit rate.Limit
	// Burst is the maximum burst size of the limiter.
	Burst int
	Log   logrus.FieldLogger
	// Health, when set, is called by GET /health.
	Health func(ctx context.Context) error
}

// New returns the router of the task service.
func New(h *handlers.Handler, m *Metrics, opts Options) http.Handler {
	limiter := rate.NewLimiter(opts.RateLimit, opts.Burst)
	wrap := func(fn HandlerFuncWithMetrics) http.HandlerFunc {
		return MetricsHandler(limiter, fn, m.EndPointCounter, m.ErrorCounter)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestID)
	r.Use(accessLog(opts.Log))
	r.Use(logPanics(opts.Log))
	r.Use(corsHandler())

	r.Get("/", func(res http.ResponseWriter, req *http.Request) {
		res.Write([]byte("This is home route"))
	})
	r.Get("/health", func(res http.ResponseWriter, req *http.Request) {
		if opts.Health != nil {
			if err := opts.Health(req.Context()); err != nil {
				response.JSON(res, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		response.JSON(res, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", wrap(h.GetTasksHandler))
		r.Post("/", wrap(h.CreateTaskHandler))
		r.Get("/{id}", wrap(h.GetTaskHandler))
		r.Patch("/{id}/status", wrap(h.UpdateTaskStatusHandler))
	})
	r.Route("/projects", func(r chi.Router) {
		r.Get("/", wrap(h.GetProjectsHandler))
		r.Post("/", wrap(h.CreateProjectHandler))
		r.Get("/{id}", wrap(h.GetProjectHandler))
	})
	return r
}
