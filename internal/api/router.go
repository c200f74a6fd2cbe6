package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/codementor/internal/api/handlers"
	"github.com/felixgeelhaar/codementor/internal/api/middleware"
)

// Router wraps the HTTP multiplexer with middleware and handlers
type Router struct {
	mux       *http.ServeMux
	handler   http.Handler
	app       *App
	review    *handlers.ReviewHandler
	rateLimit *middleware.RateLimit
}

// NewRouter creates a new API router with all routes configured
func NewRouter(app *App) *Router {
	if app.StartedAt.IsZero() {
		app.StartedAt = time.Now()
	}
	if app.Environment == "" {
		app.Environment = "development"
	}

	r := &Router{
		mux:    http.NewServeMux(),
		app:    app,
		review: handlers.NewReviewHandler(app.Reviewer, app.Limiter, app.Recorder, app.History),
	}

	r.registerRoutes()
	r.handler = r.buildMiddlewareChain(r.mux)

	return r
}

func (r *Router) registerRoutes() {
	r.mux.HandleFunc("GET /health", r.handleHealth)
	r.mux.HandleFunc("GET /ready", r.handleReady)

	r.mux.HandleFunc("POST /api/review", r.review.Review)
	r.mux.HandleFunc("GET /api/review/quota", r.review.Quota)
	r.mux.HandleFunc("GET /api/review/history", r.review.History)

	r.mux.HandleFunc("/", handlers.NotFound)
}

func (r *Router) buildMiddlewareChain(handler http.Handler) http.Handler {
	// last applied runs first
	handler = middleware.Recovery(handler)
	handler = middleware.Logger(handler)

	if !r.app.RateLimit.Disabled {
		cfg := middleware.DefaultRateLimitConfig()
		if r.app.RateLimit.Requests > 0 {
			cfg.Requests = r.app.RateLimit.Requests
		}
		if r.app.RateLimit.Window > 0 {
			cfg.Window = r.app.RateLimit.Window
		}
		r.rateLimit = middleware.NewRateLimit(cfg)
		handler = r.rateLimit.Middleware(handler)
	}

	handler = middleware.RequestID(handler)
	handler = middleware.CORS(r.app.FrontendURL)(handler)

	return handler
}

// ServeHTTP dispatches through the middleware chain
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// Close releases the rate limiter
func (r *Router) Close() error {
	if r.rateLimit != nil {
		return r.rateLimit.Close()
	}
	return nil
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status      string  `json:"status"`
	Timestamp   string  `json:"timestamp"`
	Uptime      float64 `json:"uptime"`
	Environment string  `json:"environment"`
}

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:      "OK",
		Timestamp:   time.Now().UTC().Format(time.RFC3339Nano),
		Uptime:      time.Since(r.app.StartedAt).Seconds(),
		Environment: r.app.Environment,
	})
}

func (r *Router) handleReady(w http.ResponseWriter, req *http.Request) {
	checks := make(map[string]string, len(r.app.Checks))
	ready := true

	for name, p := range r.app.Checks {
		if err := p.Ping(req.Context()); err != nil {
			slog.Error("readiness check failed",
				"check", name,
				"error", err,
				"request_id", middleware.GetRequestID(req.Context()),
			)
			checks[name] = "unhealthy"
			ready = false
			continue
		}
		checks[name] = "healthy"
	}

	if !ready {
		handlers.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not ready",
			"checks": checks,
		})
		return
	}

	handlers.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
		"checks": checks,
	})
}
