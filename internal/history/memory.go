package history

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/codementor/internal/domain"
)

// memoryRetention is how many records are kept per reviewer
const memoryRetention = MaxListLimit

// MemoryStore is an in-process Store. Records are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]*domain.ReviewRecord
	totals  map[string]int
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string][]*domain.ReviewRecord),
		totals:  make(map[string]int),
	}
}

// Record stores a copy of the record
func (s *MemoryStore) Record(_ context.Context, record *domain.ReviewRecord) error {
	if record == nil {
		return domain.ErrInvalidInput
	}

	cp := *record
	cp.FindingTypes = append([]domain.FindingType(nil), record.FindingTypes...)

	s.mu.Lock()
	defer s.mu.Unlock()

	recs := append(s.records[record.ReviewerKey], &cp)
	if len(recs) > memoryRetention {
		recs = recs[len(recs)-memoryRetention:]
	}
	s.records[record.ReviewerKey] = recs
	s.totals[record.ReviewerKey]++

	return nil
}

// ListByReviewer returns the newest records first
func (s *MemoryStore) ListByReviewer(_ context.Context, reviewerKey string, limit int) ([]*domain.ReviewRecord, error) {
	limit = NormalizeLimit(limit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.records[reviewerKey]
	out := make([]*domain.ReviewRecord, 0, min(limit, len(recs)))
	for i := len(recs) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *recs[i]
		out = append(out, &cp)
	}
	return out, nil
}

// CountByReviewer returns the number of records ever stored for the reviewer
func (s *MemoryStore) CountByReviewer(_ context.Context, reviewerKey string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totals[reviewerKey], nil
}

// Ping always succeeds
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
