package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventTypeReviewCompleted = "review.completed"
)

// BaseEvent provides common event fields
type BaseEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBaseEvent creates a new BaseEvent
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}

func (e BaseEvent) EventID() uuid.UUID    { return e.ID }
func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// ReviewCompletedEvent is emitted after a review was returned to a caller
type ReviewCompletedEvent struct {
	BaseEvent
	Record *ReviewRecord `json:"record"`
}

// NewReviewCompletedEvent wraps a record in an event envelope
func NewReviewCompletedEvent(record *ReviewRecord) *ReviewCompletedEvent {
	return &ReviewCompletedEvent{
		BaseEvent: NewBaseEvent(EventTypeReviewCompleted),
		Record:    record,
	}
}
