package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/felixgeelhaar/codementor/internal/domain"
	"github.com/felixgeelhaar/codementor/internal/history"
)

// acknowledger is the settlement side of an amqp.Delivery
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
	Reject(requeue bool) error
}

// Consumer drains review-completed events into a history store
type Consumer struct {
	conn         *Connection
	store        history.Recorder
	workers      int
	prefetch     int
	writeTimeout time.Duration
	cancelFunc   context.CancelFunc
	wg           sync.WaitGroup
}

// ConsumerConfig holds consumer configuration
type ConsumerConfig struct {
	Workers      int           // Number of concurrent workers
	Prefetch     int           // Prefetch count per worker
	WriteTimeout time.Duration // Bound on a single store write
}

// DefaultConsumerConfig returns sensible defaults
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Workers:      3,
		Prefetch:     1,
		WriteTimeout: 5 * time.Second,
	}
}

// NewConsumer creates a new queue consumer writing into store
func NewConsumer(conn *Connection, store history.Recorder, cfg ConsumerConfig) *Consumer {
	def := DefaultConsumerConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = def.Prefetch
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}

	return &Consumer{
		conn:         conn,
		store:        store,
		workers:      cfg.Workers,
		prefetch:     cfg.Prefetch,
		writeTimeout: cfg.WriteTimeout,
	}
}

// Start begins consuming messages
func (c *Consumer) Start(ctx context.Context) error {
	ctx, c.cancelFunc = context.WithCancel(ctx)

	ch := c.conn.Channel()

	if err := ch.Qos(c.prefetch*c.workers, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := ch.Consume(
		ReviewQueueName,
		"",    // consumer tag (auto-generated)
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	slog.Info("starting review queue consumer", "workers", c.workers, "prefetch", c.prefetch)

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(ctx, i, msgs)
	}

	return nil
}

func (c *Consumer) worker(ctx context.Context, id int, msgs <-chan amqp.Delivery) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			slog.Debug("worker stopping", "worker_id", id)
			return

		case msg, ok := <-msgs:
			if !ok {
				slog.Info("message channel closed", "worker_id", id)
				return
			}
			c.handle(ctx, id, msg.Body, msg.Redelivered, msg)
		}
	}
}

// handle decodes one event and writes its record. Malformed messages are
// dropped; a failed write is requeued once, then dropped.
func (c *Consumer) handle(ctx context.Context, workerID int, body []byte, redelivered bool, ack acknowledger) {
	event, err := decodeEvent(body)
	if err != nil {
		slog.Error("dropping malformed review event", "worker_id", workerID, "error", err)
		_ = ack.Reject(false)
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, c.writeTimeout)
	defer cancel()

	if err := c.store.Record(writeCtx, event.Record); err != nil {
		slog.Error("failed to store review record",
			"worker_id", workerID,
			"event_id", event.ID,
			"record_id", event.Record.ID,
			"redelivered", redelivered,
			"error", err,
		)
		_ = ack.Nack(false, !redelivered)
		return
	}

	if err := ack.Ack(false); err != nil {
		slog.Error("failed to ack message", "worker_id", workerID, "event_id", event.ID, "error", err)
		return
	}

	slog.Debug("stored review record",
		"worker_id", workerID,
		"record_id", event.Record.ID,
		"reviewer", event.Record.ReviewerKey,
	)
}

func decodeEvent(body []byte) (*domain.ReviewCompletedEvent, error) {
	var event domain.ReviewCompletedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	if event.Type != domain.EventTypeReviewCompleted {
		return nil, fmt.Errorf("unexpected event type %q", event.Type)
	}
	if event.Record == nil {
		return nil, fmt.Errorf("event %s has no record", event.ID)
	}
	return &event, nil
}

// Stop gracefully stops the consumer
func (c *Consumer) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.wg.Wait()
	slog.Info("consumer stopped")
}
