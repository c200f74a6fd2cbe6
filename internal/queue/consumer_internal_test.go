package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/felixgeelhaar/codementor/internal/domain"
	"github.com/felixgeelhaar/codementor/internal/history"
)

type fakeAck struct {
	acked, rejected, nacked bool
	requeue                 bool
}

func (f *fakeAck) Ack(bool) error { f.acked = true; return nil }
func (f *fakeAck) Nack(_, requeue bool) error {
	f.nacked, f.requeue = true, requeue
	return nil
}
func (f *fakeAck) Reject(requeue bool) error {
	f.rejected, f.requeue = true, requeue
	return nil
}

func testRecord() *domain.ReviewRecord {
	return history.NewRecord("alice", domain.LanguagePython, "eval(x)", domain.ReviewResult{
		Summary:  "Hard review: 1 high-signal issues found in Python code.",
		Severity: domain.SeverityHard,
		Findings: []domain.Finding{{Type: domain.FindingSecurity, Title: "Avoid dynamic code execution"}},
	})
}

func eventBody(t *testing.T, rec *domain.ReviewRecord) []byte {
	t.Helper()
	body, err := json.Marshal(domain.NewReviewCompletedEvent(rec))
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return body
}

func TestConsumer_HandleStoresRecord(t *testing.T) {
	store := history.NewMemoryStore()
	c := NewConsumer(nil, store, ConsumerConfig{})
	ack := &fakeAck{}

	rec := testRecord()
	c.handle(context.Background(), 0, eventBody(t, rec), false, ack)

	if !ack.acked {
		t.Error("message should be acked")
	}
	got, _ := store.ListByReviewer(context.Background(), "alice", 10)
	if len(got) != 1 {
		t.Fatalf("stored %d records; want 1", len(got))
	}
	if got[0].ID != rec.ID {
		t.Errorf("record ID = %v; want %v", got[0].ID, rec.ID)
	}
	if got[0].FindingTypes[0] != domain.FindingSecurity {
		t.Errorf("FindingTypes = %v; want [security]", got[0].FindingTypes)
	}
}

func TestConsumer_HandleMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"wrong type", `{"id":"00000000-0000-0000-0000-000000000000","type":"other","record":{}}`},
		{"no record", `{"id":"00000000-0000-0000-0000-000000000000","type":"review.completed"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := history.NewMemoryStore()
			c := NewConsumer(nil, store, ConsumerConfig{})
			ack := &fakeAck{}

			c.handle(context.Background(), 0, []byte(tt.body), false, ack)

			if !ack.rejected || ack.requeue {
				t.Errorf("malformed message should be rejected without requeue; got %+v", ack)
			}
			if ack.acked {
				t.Error("malformed message should not be acked")
			}
		})
	}
}

func TestConsumer_HandleStoreFailure(t *testing.T) {
	failing := history.RecorderFunc(func(context.Context, *domain.ReviewRecord) error {
		return errors.New("database is locked")
	})
	c := NewConsumer(nil, failing, ConsumerConfig{})

	first := &fakeAck{}
	c.handle(context.Background(), 0, eventBody(t, testRecord()), false, first)
	if !first.nacked || !first.requeue {
		t.Errorf("first failure should nack with requeue; got %+v", first)
	}

	second := &fakeAck{}
	c.handle(context.Background(), 0, eventBody(t, testRecord()), true, second)
	if !second.nacked || second.requeue {
		t.Errorf("redelivered failure should nack without requeue; got %+v", second)
	}
}

func TestNewConsumer_Defaults(t *testing.T) {
	c := NewConsumer(nil, history.NopRecorder, ConsumerConfig{})
	def := DefaultConsumerConfig()

	if c.workers != def.Workers {
		t.Errorf("workers = %d; want %d", c.workers, def.Workers)
	}
	if c.prefetch != def.Prefetch {
		t.Errorf("prefetch = %d; want %d", c.prefetch, def.Prefetch)
	}
	if c.writeTimeout != def.WriteTimeout {
		t.Errorf("writeTimeout = %v; want %v", c.writeTimeout, def.WriteTimeout)
	}
}

func TestNewConsumer_PreservesCustomConfig(t *testing.T) {
	c := NewConsumer(nil, history.NopRecorder, ConsumerConfig{Workers: 10, Prefetch: 5})
	if c.workers != 10 {
		t.Errorf("workers = %d; want 10", c.workers)
	}
	if c.prefetch != 5 {
		t.Errorf("prefetch = %d; want 5", c.prefetch)
	}
}

func TestConsumer_StopWithoutStart(t *testing.T) {
	c := NewConsumer(nil, history.NopRecorder, ConsumerConfig{})
	c.Stop()
}
