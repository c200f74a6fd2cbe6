// Package api wires the review HTTP API: routes, middleware and health checks.
package api

import (
	"context"
	"time"

	"github.com/felixgeelhaar/codementor/internal/api/handlers"
	"github.com/felixgeelhaar/codementor/internal/history"
	"github.com/felixgeelhaar/codementor/internal/quota"
)

// Pinger is a dependency checked by /ready
type Pinger interface {
	Ping(ctx context.Context) error
}

// App holds all application dependencies
type App struct {
	Environment string
	FrontendURL string
	RateLimit   RateLimitSettings

	Reviewer handlers.Reviewer
	Limiter  *quota.Limiter
	// Recorder receives completed reviews; nil disables recording
	Recorder history.Recorder
	// History serves the history endpoint; nil returns empty lists
	History history.Reader
	// Checks are pinged by /ready, keyed by name
	Checks map[string]Pinger

	StartedAt time.Time
}

// RateLimitSettings configures the general API rate limit
type RateLimitSettings struct {
	Disabled bool
	Requests int
	Window   time.Duration
}
