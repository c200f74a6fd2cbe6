// Package daemon runs the codementor HTTP API: it wires configuration,
// review history and the router into an http.Server.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/codementor/internal/api"
	"github.com/felixgeelhaar/codementor/internal/config"
	"github.com/felixgeelhaar/codementor/internal/quota"
	"github.com/felixgeelhaar/codementor/internal/review"
)

// Server is the codementor daemon
type Server struct {
	cfg     *config.Config
	backend *Backend
	router  *api.Router
	server  *http.Server
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Config *config.Config
	// Backend overrides the backend built from Config.History
	Backend *Backend
}

// NewServer creates a new daemon server
func NewServer(ctx context.Context, cfg ServerConfig) (*Server, error) {
	if cfg.Config == nil {
		cfg.Config = config.Default()
	}

	backend := cfg.Backend
	if backend == nil {
		var err error
		backend, err = OpenBackend(ctx, cfg.Config)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
	}

	router := api.NewRouter(&api.App{
		Environment: cfg.Config.Server.Environment,
		FrontendURL: cfg.Config.Server.FrontendURL,
		RateLimit: api.RateLimitSettings{
			Requests: cfg.Config.Server.APIRateLimit,
			Window:   cfg.Config.Server.APIRateWindow,
		},
		Reviewer: review.NewEngine(),
		Limiter:  quota.New(cfg.Config.Review.FreeLimit),
		Recorder: backend.Recorder,
		History:  backend.Reader,
		Checks:   backend.Checks,
	})

	s := &Server{
		cfg:     cfg.Config,
		backend: backend,
		router:  router,
	}
	s.server = &http.Server{
		Addr:              cfg.Config.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s, nil
}

// Handler returns the HTTP handler served by the daemon
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	slog.Info("starting codementor daemon",
		"addr", s.server.Addr,
		"environment", s.cfg.Server.Environment,
		"history", s.backend.Driver,
		"free_limit", s.cfg.Review.FreeLimit,
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server and releases the backend
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down daemon...")

	err := s.server.Shutdown(ctx)
	if cerr := s.router.Close(); cerr != nil {
		slog.Warn("failed to close router", "error", cerr)
	}
	if cerr := s.backend.Close(); cerr != nil {
		slog.Warn("failed to close history", "error", cerr)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
