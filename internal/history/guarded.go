package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"

	"github.com/felixgeelhaar/codementor/internal/domain"
)

// GuardedConfig configures a GuardedRecorder
type GuardedConfig struct {
	// MaxConcurrent writes allowed at once (default: 4)
	MaxConcurrent int
	// Timeout bounds a single write, including time spent queued (default: 2s)
	Timeout time.Duration
	// Logger for dropped records
	Logger *slog.Logger
}

// DefaultGuardedConfig returns sensible defaults
func DefaultGuardedConfig() GuardedConfig {
	return GuardedConfig{
		MaxConcurrent: 4,
		Timeout:       2 * time.Second,
	}
}

// GuardedRecorder bounds concurrent writes to a slower Recorder with a
// fortify bulkhead so request goroutines cannot pile up behind it.
type GuardedRecorder struct {
	next     Recorder
	bulkhead bulkhead.Bulkhead[struct{}]
	timeout  time.Duration
	logger   *slog.Logger
}

// NewGuardedRecorder wraps next
func NewGuardedRecorder(next Recorder, cfg GuardedConfig) *GuardedRecorder {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &GuardedRecorder{
		next: next,
		bulkhead: bulkhead.New[struct{}](bulkhead.Config{
			MaxConcurrent: cfg.MaxConcurrent,
			MaxQueue:      cfg.MaxConcurrent * 4,
			QueueTimeout:  cfg.Timeout,
		}),
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}
}

// Record forwards the record through the bulkhead
func (g *GuardedRecorder) Record(ctx context.Context, record *domain.ReviewRecord) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	_, err := g.bulkhead.Execute(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, g.next.Record(ctx, record)
	})
	if err != nil {
		g.logger.Warn("review record dropped",
			"record_id", record.ID,
			"reviewer", record.ReviewerKey,
			"error", err,
		)
	}
	return err
}
