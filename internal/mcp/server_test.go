package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/codementor/internal/domain"
	"github.com/felixgeelhaar/codementor/internal/history"
	"github.com/felixgeelhaar/codementor/internal/quota"
	"github.com/felixgeelhaar/codementor/internal/review"
)

func setupTestServer(t *testing.T, limit int) (*Server, *history.MemoryStore) {
	t.Helper()
	store := history.NewMemoryStore()
	return NewServer(Config{
		Version:  "test",
		Reviewer: review.NewEngine(),
		Limiter:  quota.New(limit),
		Recorder: store,
		History:  store,
	}), store
}

func TestNewServer(t *testing.T) {
	s, _ := setupTestServer(t, 3)

	if s.mcpServer == nil {
		t.Fatal("expected non-nil MCP server")
	}
}

func TestNewServer_Defaults(t *testing.T) {
	s := NewServer(Config{Reviewer: review.NewEngine()})
	if s.limiter == nil || s.limiter.Limit() != quota.DefaultLimit {
		t.Error("limiter should default to the free limit")
	}
	if s.recorder == nil {
		t.Error("recorder should default to a no-op")
	}
}

func TestHandleReview(t *testing.T) {
	s, store := setupTestServer(t, 3)
	ctx := context.Background()

	out, err := s.handleReview(ctx, ReviewInput{
		Language: "javascript",
		Code:     "eval(userInput)",
		UserID:   "alice",
	})
	if err != nil {
		t.Fatalf("handleReview() error = %v", err)
	}
	if !out.HasFindingType(domain.FindingSecurity) {
		t.Error("expected a security finding")
	}
	if out.Remaining != 2 {
		t.Errorf("Remaining = %d; want 2", out.Remaining)
	}

	n, _ := store.CountByReviewer(ctx, "alice")
	if n != 1 {
		t.Errorf("recorded %d reviews; want 1", n)
	}
}

func TestHandleReview_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input ReviewInput
		want  string
	}{
		{"bad language", ReviewInput{Language: "ruby", Code: "puts 1"}, domain.MsgLanguageNotAllow},
		{"bad mode", ReviewInput{Language: "python", Code: "x", Mode: "soft"}, domain.MsgModeNotAllowed},
		{"missing code", ReviewInput{Language: "python"}, domain.MsgFieldsRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := setupTestServer(t, 3)
			_, err := s.handleReview(context.Background(), tt.input)
			if err == nil {
				t.Fatal("handleReview() should fail")
			}
			if err.Error() != tt.want {
				t.Errorf("error = %q; want %q", err.Error(), tt.want)
			}
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Error("error should wrap ErrInvalidInput")
			}
		})
	}
}

func TestHandleReview_LimitReached(t *testing.T) {
	s, _ := setupTestServer(t, 1)
	ctx := context.Background()
	in := ReviewInput{Language: "python", Code: "print(1)"}

	if _, err := s.handleReview(ctx, in); err != nil {
		t.Fatalf("first review error = %v", err)
	}
	_, err := s.handleReview(ctx, in)
	if err == nil || !strings.Contains(err.Error(), "Subscribe") {
		t.Errorf("error = %v; want the subscribe message", err)
	}

	// another identity is unaffected
	in.UserID = "bob"
	if _, err := s.handleReview(ctx, in); err != nil {
		t.Errorf("other identity error = %v", err)
	}
}

func TestHandleQuota(t *testing.T) {
	s, _ := setupTestServer(t, 3)
	ctx := context.Background()

	_, _ = s.handleReview(ctx, ReviewInput{Language: "python", Code: "x = 1", UserID: "  carol "})

	out, err := s.handleQuota(ctx, QuotaInput{UserID: "carol"})
	if err != nil {
		t.Fatalf("handleQuota() error = %v", err)
	}
	if out.Limit != 3 || out.Remaining != 2 {
		t.Errorf("quota = %+v; want limit 3, remaining 2", out)
	}

	out, _ = s.handleQuota(ctx, QuotaInput{})
	if out.Remaining != 3 {
		t.Errorf("default identity remaining = %d; want 3", out.Remaining)
	}
}

func TestHandleHistory(t *testing.T) {
	s, _ := setupTestServer(t, 5)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = s.handleReview(ctx, ReviewInput{Language: "typescript", Code: "let a = 1", UserID: "dave"})
	}

	out, err := s.handleHistory(ctx, HistoryInput{UserID: "dave", Limit: 2})
	if err != nil {
		t.Fatalf("handleHistory() error = %v", err)
	}
	if len(out.Reviews) != 2 {
		t.Errorf("len(Reviews) = %d; want 2", len(out.Reviews))
	}
	if out.Total != 3 {
		t.Errorf("Total = %d; want 3", out.Total)
	}
}

func TestHandleHistory_NoStore(t *testing.T) {
	s := NewServer(Config{Reviewer: review.NewEngine()})

	out, err := s.handleHistory(context.Background(), HistoryInput{})
	if err != nil {
		t.Fatalf("handleHistory() error = %v", err)
	}
	if out.Reviews == nil || len(out.Reviews) != 0 {
		t.Errorf("Reviews = %v; want empty non-nil list", out.Reviews)
	}
}

type failingReader struct{ err error }

func (f failingReader) ListByReviewer(context.Context, string, int) ([]*domain.ReviewRecord, error) {
	return nil, f.err
}

func (f failingReader) CountByReviewer(context.Context, string) (int, error) {
	return 0, f.err
}

func TestHandleHistory_StoreFailure(t *testing.T) {
	s := NewServer(Config{
		Reviewer: review.NewEngine(),
		History:  failingReader{err: errors.New("disk gone")},
	})

	_, err := s.handleHistory(context.Background(), HistoryInput{UserID: "erin"})
	if !errors.Is(err, domain.ErrHistoryUnavailable) {
		t.Errorf("handleHistory() error = %v; want ErrHistoryUnavailable", err)
	}
}

func TestIdentity(t *testing.T) {
	if got := identity(""); got != DefaultIdentity {
		t.Errorf("identity(\"\") = %q; want %q", got, DefaultIdentity)
	}
	if got := identity("  eve "); got != "eve" {
		t.Errorf("identity() = %q; want eve", got)
	}
}
