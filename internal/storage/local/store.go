// Package local stores review history as JSON files, one directory per
// reviewer. It suits single-node installs that want history to survive a
// restart without running a database.
package local

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/felixgeelhaar/codementor/internal/domain"
	"github.com/felixgeelhaar/codementor/internal/history"
)

var _ history.Store = (*ReviewStore)(nil)

// ReviewStore provides thread-safe JSON file storage of review records
type ReviewStore struct {
	fs       afero.Fs
	basePath string
	mu       sync.RWMutex
}

// NewReviewStore creates the store rooted at basePath
func NewReviewStore(fs afero.Fs, basePath string) (*ReviewStore, error) {
	if err := fs.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &ReviewStore{fs: fs, basePath: basePath}, nil
}

// Record persists the record. Recording the same record twice is a no-op.
func (s *ReviewStore) Record(_ context.Context, rec *domain.ReviewRecord) error {
	if rec == nil {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.reviewerDir(rec.ReviewerKey)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create reviewer directory: %w", err)
	}

	path := filepath.Join(dir, recordFileName(rec))
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return fmt.Errorf("stat record: %w", err)
	}
	if exists {
		return nil
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	if err := afero.WriteFile(s.fs, path, data, 0644); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// ListByReviewer returns the newest records first
func (s *ReviewStore) ListByReviewer(_ context.Context, reviewerKey string, limit int) ([]*domain.ReviewRecord, error) {
	limit = history.NormalizeLimit(limit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := s.reviewerDir(reviewerKey)
	names, err := s.listNames(dir)
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	if len(names) > limit {
		names = names[:limit]
	}

	out := make([]*domain.ReviewRecord, 0, len(names))
	for _, name := range names {
		rec, err := s.load(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// CountByReviewer returns the number of stored records for the reviewer
func (s *ReviewStore) CountByReviewer(_ context.Context, reviewerKey string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names, err := s.listNames(s.reviewerDir(reviewerKey))
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

// Ping checks that the base directory is still reachable
func (s *ReviewStore) Ping(context.Context) error {
	info, err := s.fs.Stat(s.basePath)
	if err != nil {
		return fmt.Errorf("stat store directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.basePath)
	}
	return nil
}

// Close is a no-op
func (s *ReviewStore) Close() error {
	return nil
}

func (s *ReviewStore) load(path string) (*domain.ReviewRecord, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrReviewRecordNotFound
		}
		return nil, fmt.Errorf("read record: %w", err)
	}

	var rec domain.ReviewRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode json %s: %w", filepath.Base(path), err)
	}
	return &rec, nil
}

func (s *ReviewStore) listNames(dir string) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// reviewerDir hashes the key; keys carry user ids and addresses that are
// not safe path segments
func (s *ReviewStore) reviewerDir(reviewerKey string) string {
	sum := sha256.Sum256([]byte(reviewerKey))
	return filepath.Join(s.basePath, hex.EncodeToString(sum[:8]))
}

// recordFileName sorts lexically in creation order
func recordFileName(rec *domain.ReviewRecord) string {
	return fmt.Sprintf("%020d-%s.json", rec.CreatedAt.UnixNano(), rec.ID)
}
