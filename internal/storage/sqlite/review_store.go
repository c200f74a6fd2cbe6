package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/codementor/internal/domain"
	"github.com/felixgeelhaar/codementor/internal/history"
)

// ReviewStore persists review records in SQLite.
type ReviewStore struct {
	db *DB
}

// NewReviewStore creates a new SQLite-backed review store.
func NewReviewStore(db *DB) *ReviewStore {
	return &ReviewStore{db: db}
}

// Record inserts a review record. Re-recording the same id is a no-op.
func (s *ReviewStore) Record(ctx context.Context, rec *domain.ReviewRecord) error {
	if rec == nil {
		return domain.ErrInvalidInput
	}

	types, err := json.Marshal(findingTypesOrEmpty(rec.FindingTypes))
	if err != nil {
		return fmt.Errorf("marshal finding_types: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reviews (id, reviewer_key, language, summary, severity,
			finding_types, finding_count, code_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		rec.ID.String(), rec.ReviewerKey, string(rec.Language), rec.Summary,
		string(rec.Severity), string(types), rec.FindingCount, rec.CodeHash,
		rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// ListByReviewer returns the newest records first.
func (s *ReviewStore) ListByReviewer(ctx context.Context, reviewerKey string, limit int) ([]*domain.ReviewRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, reviewer_key, language, summary, severity,
			finding_types, finding_count, code_hash, created_at
		FROM reviews
		WHERE reviewer_key = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, reviewerKey, history.NormalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var out []*domain.ReviewRecord
	for rows.Next() {
		rec, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountByReviewer returns the number of stored reviews for the reviewer.
func (s *ReviewStore) CountByReviewer(ctx context.Context, reviewerKey string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reviews WHERE reviewer_key = ?", reviewerKey).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return n, nil
}

// Get retrieves a record by id.
func (s *ReviewStore) Get(ctx context.Context, id uuid.UUID) (*domain.ReviewRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, reviewer_key, language, summary, severity,
			finding_types, finding_count, code_hash, created_at
		FROM reviews WHERE id = ?`, id.String())
	rec, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrReviewRecordNotFound
	}
	return rec, err
}

// Ping checks the connection.
func (s *ReviewStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *ReviewStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReview(row scanner) (*domain.ReviewRecord, error) {
	var (
		rec                         domain.ReviewRecord
		id, language, severity, raw string
		createdAt                   time.Time
	)
	err := row.Scan(&id, &rec.ReviewerKey, &language, &rec.Summary, &severity,
		&raw, &rec.FindingCount, &rec.CodeHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}

	if rec.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse review id %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(raw), &rec.FindingTypes); err != nil {
		return nil, fmt.Errorf("unmarshal finding_types: %w", err)
	}
	rec.Language = domain.Language(language)
	rec.Severity = domain.Severity(severity)
	rec.CreatedAt = createdAt.UTC()
	return &rec, nil
}

func findingTypesOrEmpty(types []domain.FindingType) []domain.FindingType {
	if types == nil {
		return []domain.FindingType{}
	}
	return types
}
