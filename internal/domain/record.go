package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReviewRecord is the audit view of a completed review.
// It never carries the submitted code, only a digest of it.
type ReviewRecord struct {
	ID           uuid.UUID     `json:"id"`
	ReviewerKey  string        `json:"reviewer_key"`
	Language     Language      `json:"language"`
	Summary      string        `json:"summary"`
	Severity     Severity      `json:"severity"`
	FindingTypes []FindingType `json:"finding_types"`
	FindingCount int           `json:"finding_count"`
	CodeHash     string        `json:"code_hash"`
	CreatedAt    time.Time     `json:"created_at"`
}

// NewReviewRecord builds a record for a review that was just returned to a caller
func NewReviewRecord(reviewerKey string, lang Language, code string, result ReviewResult) *ReviewRecord {
	return &ReviewRecord{
		ID:           uuid.New(),
		ReviewerKey:  reviewerKey,
		Language:     lang,
		Summary:      result.Summary,
		Severity:     result.Severity,
		FindingTypes: result.FindingTypes(),
		FindingCount: len(result.Findings),
		CodeHash:     HashCode(code),
		CreatedAt:    time.Now().UTC(),
	}
}

// HashCode returns the hex sha256 of the trimmed code
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(code)))
	return hex.EncodeToString(sum[:])
}
