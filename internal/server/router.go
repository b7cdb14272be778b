// Package server exposes the adaptation pipelines over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/incluia/assessment-adapter/internal/observability"
)

// Options holds HTTP layer settings.
type Options struct {
	RequestTimeout time.Duration
	MaxUploadBytes int64
}

// NewRouter creates the API router with all routes configured. metrics may
// be nil, in which case /metrics is not mounted.
func NewRouter(pipeline Pipeline, logger *observability.Logger, metrics *observability.Metrics, opts Options) http.Handler {
	if logger == nil {
		logger = observability.Nop()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.Middleware(routePattern))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "incluia"})
	})

	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	h := NewHandler(pipeline, logger, opts.MaxUploadBytes)

	r.Route("/api/v1", func(r chi.Router) {
		if opts.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(opts.RequestTimeout))
		}
		r.Get("/needs", h.ListNeeds)
		r.Post("/adaptations", h.Adapt)
		r.Post("/illustrations", h.Illustrate)
		r.Post("/readability", h.Readability)
	})

	return r
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
