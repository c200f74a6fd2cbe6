package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"
)

// RateLimitConfig configures the general API rate limit
type RateLimitConfig struct {
	// Requests allowed per Window for one client address
	Requests int
	Window   time.Duration
	// PathPrefix limits enforcement to matching paths; empty means all
	PathPrefix string
}

// DefaultRateLimitConfig returns 100 requests per 15 minutes on /api/
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Requests:   100,
		Window:     15 * time.Minute,
		PathPrefix: "/api/",
	}
}

// RateLimit throttles requests per client address with a fortify token bucket
type RateLimit struct {
	limiter ratelimit.RateLimiter
	cfg     RateLimitConfig
}

// NewRateLimit creates the limiter. Call Close when done.
func NewRateLimit(cfg RateLimitConfig) *RateLimit {
	def := DefaultRateLimitConfig()
	if cfg.Requests <= 0 {
		cfg.Requests = def.Requests
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}

	return &RateLimit{
		limiter: ratelimit.New(&ratelimit.Config{
			Rate:     cfg.Requests,
			Burst:    cfg.Requests,
			Interval: cfg.Window,
		}),
		cfg: cfg,
	}
}

// Middleware returns the HTTP middleware; exceeded clients get 429
func (rl *RateLimit) Middleware(next http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(rl.cfg.Window.Seconds()))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, rl.cfg.PathPrefix) {
			next.ServeHTTP(w, r)
			return
		}

		key := clientAddr(r)
		if !rl.limiter.Allow(r.Context(), key) {
			slog.Warn("rate limit exceeded",
				"ip", key,
				"path", r.URL.Path,
				"request_id", GetRequestID(r.Context()),
			)

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", retryAfter)
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"message":"Too many requests, please try again later.","code":"RATE_LIMITED"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Close releases the limiter
func (rl *RateLimit) Close() error {
	return rl.limiter.Close()
}

// clientAddr is the peer host; forwarding headers are not trusted
func clientAddr(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
