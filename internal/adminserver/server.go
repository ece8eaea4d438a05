// Package adminserver wires chronod's admin HTTP API: job
// introspection and control, expression description, the live event
// stream, health, and Prometheus exposition. It follows the teacher's
// internal/server shape (chi router, a small logging/recovery/
// request-ID middleware stack, a responseWriter wrapper that preserves
// http.Hijacker for the WebSocket upgrade) generalized away from the
// teacher's large device-automation surface to chronod's handful of
// routes.
package adminserver

import (
	"bufio"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/cronforge/chronod/internal/adminauth"
	"github.com/cronforge/chronod/internal/api"
	"github.com/cronforge/chronod/internal/config"
	"github.com/cronforge/chronod/internal/eventstream"
	"github.com/cronforge/chronod/internal/metrics"
	"github.com/cronforge/chronod/internal/registry"
	"github.com/cronforge/chronod/internal/runhistory"
)

// responseWriter wraps http.ResponseWriter to capture the status code
// written while still exposing Hijack for the WebSocket upgrade.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

func requestLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.RequestURI(), wrapped.status, time.Since(start).Round(time.Millisecond))
	})
}

// Deps bundles the already-constructed collaborators NewHandler wires
// into routes. Registry and Hub are owned by main, not by the server
// itself, since the manifest loader also needs them.
type Deps struct {
	Config       config.Config
	Registry     *registry.Registry
	Events       *eventstream.Hub
	Recorder     *metrics.Recorder
	PromRegistry *prom.Registry
	History      *runhistory.Store // nil when run history is disabled
}

// NewHandler builds the admin HTTP handler.
func NewHandler(deps Deps) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.StripSlashes)
	router.Use(requestLoggerMiddleware)
	router.Use(api.RequestIDMiddleware)
	router.Use(api.RecovererMiddleware)
	router.Use(adminauth.Middleware(deps.Config))

	registerHealthRoutes(router)
	registerJobRoutes(router, deps)
	registerDescribeRoute(router)
	registerEventRoute(router, deps.Events)

	if deps.PromRegistry != nil {
		router.Handle("/metrics", metrics.HTTPHandler(deps.PromRegistry))
	}

	return router
}

func registerHealthRoutes(router chi.Router) {
	router.Method(http.MethodGet, "/v1/health", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return api.WriteJSON(w, http.StatusOK, map[string]any{
			"status":    "healthy",
			"service":   "chronod",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}))
	router.Method(http.MethodGet, "/v1/health/live", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return api.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}))
	router.Method(http.MethodGet, "/v1/health/ready", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return api.WriteJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	}))
}
