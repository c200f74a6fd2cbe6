// Package history keeps an audit trail of completed reviews.
//
// The review endpoint only ever writes through a Recorder and treats its
// failures as non-fatal: a review that was computed is always returned to the
// caller. Stores are selected by configuration (memory, sqlite, postgres) or
// replaced by a queue publisher whose consumer persists records later.
package history

import (
	"context"

	"github.com/felixgeelhaar/codementor/internal/domain"
)

// DefaultListLimit bounds history listings when the caller gives no limit
const DefaultListLimit = 20

// MaxListLimit is the largest page a store will return
const MaxListLimit = 100

// Recorder accepts completed reviews
type Recorder interface {
	Record(ctx context.Context, record *domain.ReviewRecord) error
}

// Reader lists completed reviews
type Reader interface {
	ListByReviewer(ctx context.Context, reviewerKey string, limit int) ([]*domain.ReviewRecord, error)
	CountByReviewer(ctx context.Context, reviewerKey string) (int, error)
}

// Store is a persistent review history
type Store interface {
	Recorder
	Reader
	Ping(ctx context.Context) error
	Close() error
}

// RecorderFunc adapts a function to the Recorder interface
type RecorderFunc func(ctx context.Context, record *domain.ReviewRecord) error

// Record calls f(ctx, record)
func (f RecorderFunc) Record(ctx context.Context, record *domain.ReviewRecord) error {
	return f(ctx, record)
}

// NopRecorder discards every record
var NopRecorder Recorder = RecorderFunc(func(context.Context, *domain.ReviewRecord) error { return nil })

// NormalizeLimit clamps a requested page size into [1, MaxListLimit]
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// NewRecord builds the history entry for a completed review
func NewRecord(reviewerKey string, lang domain.Language, code string, result domain.ReviewResult) *domain.ReviewRecord {
	return domain.NewReviewRecord(reviewerKey, lang, code, result)
}
