package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sqlc-dev/pqtype"

	"github.com/felixgeelhaar/codementor/internal/domain"
	"github.com/felixgeelhaar/codementor/internal/history"
)

var _ history.Store = (*ReviewStore)(nil)

// ReviewStore persists review records in PostgreSQL
type ReviewStore struct {
	pool *pgxpool.Pool
}

// NewReviewStore creates a new PostgreSQL review store
func NewReviewStore(pool *pgxpool.Pool) *ReviewStore {
	return &ReviewStore{pool: pool}
}

// Record inserts a review record; re-recording the same id is a no-op
func (s *ReviewStore) Record(ctx context.Context, rec *domain.ReviewRecord) error {
	if rec == nil {
		return domain.ErrInvalidInput
	}

	types, err := encodeFindingTypes(rec.FindingTypes)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO reviews (id, reviewer_key, language, summary, severity,
			finding_types, finding_count, code_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = s.pool.Exec(ctx, query,
		rec.ID, rec.ReviewerKey, string(rec.Language), rec.Summary, string(rec.Severity),
		jsonArg(types), rec.FindingCount, rec.CodeHash, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// ListByReviewer returns the newest records first
func (s *ReviewStore) ListByReviewer(ctx context.Context, reviewerKey string, limit int) ([]*domain.ReviewRecord, error) {
	query := `
		SELECT id, reviewer_key, language, summary, severity,
			finding_types, finding_count, code_hash, created_at
		FROM reviews WHERE reviewer_key = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.pool.Query(ctx, query, reviewerKey, history.NormalizeLimit(limit))
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

// CountByReviewer returns the number of stored reviews for the reviewer
func (s *ReviewStore) CountByReviewer(ctx context.Context, reviewerKey string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM reviews WHERE reviewer_key = $1", reviewerKey).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return n, nil
}

// Get retrieves a record by id
func (s *ReviewStore) Get(ctx context.Context, id uuid.UUID) (*domain.ReviewRecord, error) {
	query := `
		SELECT id, reviewer_key, language, summary, severity,
			finding_types, finding_count, code_hash, created_at
		FROM reviews WHERE id = $1
	`
	rec, err := scanReview(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrReviewRecordNotFound
	}
	return rec, err
}

// Ping checks the pool
func (s *ReviewStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool
func (s *ReviewStore) Close() error {
	s.pool.Close()
	return nil
}

func scanReview(row pgx.Row) (*domain.ReviewRecord, error) {
	var (
		rec                domain.ReviewRecord
		language, severity string
		raw                []byte
	)
	err := row.Scan(&rec.ID, &rec.ReviewerKey, &language, &rec.Summary, &severity,
		&raw, &rec.FindingCount, &rec.CodeHash, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}

	rec.FindingTypes, err = decodeFindingTypes(pqtype.NullRawMessage{RawMessage: raw, Valid: raw != nil})
	if err != nil {
		return nil, err
	}
	rec.Language = domain.Language(language)
	rec.Severity = domain.Severity(severity)
	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}

// encodeFindingTypes maps an empty list to SQL NULL
func encodeFindingTypes(types []domain.FindingType) (pqtype.NullRawMessage, error) {
	if len(types) == 0 {
		return pqtype.NullRawMessage{}, nil
	}
	data, err := json.Marshal(types)
	if err != nil {
		return pqtype.NullRawMessage{}, fmt.Errorf("marshal finding_types: %w", err)
	}
	return pqtype.NullRawMessage{RawMessage: data, Valid: true}, nil
}

func decodeFindingTypes(raw pqtype.NullRawMessage) ([]domain.FindingType, error) {
	if !raw.Valid {
		return []domain.FindingType{}, nil
	}
	var types []domain.FindingType
	if err := json.Unmarshal(raw.RawMessage, &types); err != nil {
		return nil, fmt.Errorf("unmarshal finding_types: %w", err)
	}
	return types, nil
}

// jsonArg converts a nullable JSON value into a pgx query argument
func jsonArg(raw pqtype.NullRawMessage) any {
	if !raw.Valid {
		return nil
	}
	return []byte(raw.RawMessage)
}
