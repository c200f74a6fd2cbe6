//go:build integration

package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"

	"github.com/felixgeelhaar/codementor/internal/domain"
	"github.com/felixgeelhaar/codementor/internal/history"
	"github.com/felixgeelhaar/codementor/internal/queue"
)

// setupRabbitMQ creates a RabbitMQ container for testing
func setupRabbitMQ(t *testing.T) (string, func()) {
	ctx := context.Background()

	container, err := rabbitmq.Run(ctx, "rabbitmq:3.12-management")
	if err != nil {
		t.Fatalf("failed to start RabbitMQ container: %v", err)
	}

	amqpURL, err := container.AmqpURL(ctx)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("failed to get AMQP URL: %v", err)
	}

	cleanup := func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return amqpURL, cleanup
}

func TestIntegration_Connection_ConnectAndClose(t *testing.T) {
	amqpURL, cleanup := setupRabbitMQ(t)
	defer cleanup()

	conn, err := queue.NewConnection(amqpURL)
	if err != nil {
		t.Fatalf("failed to create connection: %v", err)
	}

	if !conn.IsConnected() {
		t.Error("expected connection to be active")
	}
	if err := conn.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	if err := conn.Close(); err != nil {
		t.Errorf("failed to close connection: %v", err)
	}
	if conn.IsConnected() {
		t.Error("expected connection to be closed")
	}
}

func TestIntegration_Connection_InvalidURL(t *testing.T) {
	_, err := queue.NewConnection("amqp://invalid:5672")
	if err == nil {
		t.Error("expected error for invalid URL")
	}
}

func TestIntegration_PublishAndConsume(t *testing.T) {
	amqpURL, cleanup := setupRabbitMQ(t)
	defer cleanup()

	conn, err := queue.NewConnection(amqpURL)
	if err != nil {
		t.Fatalf("failed to create connection: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store := history.NewMemoryStore()
	consumer := queue.NewConsumer(conn, store, queue.ConsumerConfig{Workers: 2, Prefetch: 1})
	if err := consumer.Start(ctx); err != nil {
		t.Fatalf("failed to start consumer: %v", err)
	}
	defer consumer.Stop()

	publisher := queue.NewPublisher(conn, queue.DefaultPublisherConfig())
	const count = 3
	for i := 0; i < count; i++ {
		rec := history.NewRecord("integration", domain.LanguageTypeScript, "console.log(x)", domain.ReviewResult{
			Summary:  "Hard review: 1 high-signal issues found in TypeScript code.",
			Severity: domain.SeverityHard,
			Findings: []domain.Finding{{Type: domain.FindingStyle, Title: "Remove debug output"}},
		})
		if err := publisher.Record(ctx, rec); err != nil {
			t.Fatalf("failed to publish record %d: %v", i, err)
		}
	}

	deadline := time.Now().Add(20 * time.Second)
	for {
		n, _ := store.CountByReviewer(ctx, "integration")
		if n == count {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("stored %d records; want %d", n, count)
		}
		time.Sleep(100 * time.Millisecond)
	}
}
