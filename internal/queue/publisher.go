package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/felixgeelhaar/codementor/internal/domain"
	"github.com/felixgeelhaar/codementor/internal/history"
)

// publisher is the part of Connection the Publisher needs
type publisher interface {
	PublishJSON(ctx context.Context, queue string, msg Message) error
}

var _ history.Recorder = (*Publisher)(nil)

// PublisherConfig holds publisher resilience settings
type PublisherConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	// FailureThreshold is the consecutive failures that open the breaker
	FailureThreshold int
	// OpenTimeout is how long the breaker stays open before probing
	OpenTimeout time.Duration
	Logger      *slog.Logger
}

// DefaultPublisherConfig returns sensible defaults
func DefaultPublisherConfig() PublisherConfig {
	return PublisherConfig{
		MaxAttempts:      3,
		InitialDelay:     100 * time.Millisecond,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// Publisher publishes review-completed events. It implements
// history.Recorder so the review handler can use it in place of a store.
type Publisher struct {
	conn    publisher
	retrier retry.Retry[struct{}]
	breaker circuitbreaker.CircuitBreaker[struct{}]
	logger  *slog.Logger
}

// NewPublisher creates a publisher on conn
func NewPublisher(conn *Connection, cfg PublisherConfig) *Publisher {
	return newPublisher(conn, cfg)
}

func newPublisher(conn publisher, cfg PublisherConfig) *Publisher {
	def := DefaultPublisherConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = def.InitialDelay
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	p := &Publisher{conn: conn, logger: cfg.Logger}

	p.retrier = retry.New[struct{}](retry.Config{
		MaxAttempts:   cfg.MaxAttempts,
		InitialDelay:  cfg.InitialDelay,
		MaxDelay:      5 * time.Second,
		Multiplier:    2.0,
		BackoffPolicy: retry.BackoffExponential,
		Jitter:        true,
	})

	threshold := cfg.FailureThreshold
	p.breaker = circuitbreaker.New[struct{}](circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return int(counts.ConsecutiveFailures) >= threshold
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			p.logger.Warn("review publisher circuit breaker state change",
				"queue", ReviewQueueName,
				"from", from.String(),
				"to", to.String())
		},
	})

	return p
}

// Record publishes a ReviewCompletedEvent for rec
func (p *Publisher) Record(ctx context.Context, rec *domain.ReviewRecord) error {
	if rec == nil {
		return domain.ErrInvalidInput
	}

	event := domain.NewReviewCompletedEvent(rec)

	_, err := p.breaker.Execute(ctx, func(ctx context.Context) (struct{}, error) {
		return p.retrier.Do(ctx, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, p.conn.PublishJSON(ctx, ReviewQueueName, event)
		})
	})
	if err != nil {
		return fmt.Errorf("failed to publish review event: %w", err)
	}

	p.logger.Debug("published review event",
		"event_id", event.ID,
		"record_id", rec.ID,
		"reviewer", rec.ReviewerKey,
	)
	return nil
}
