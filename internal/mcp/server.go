// Package mcp exposes the hard review engine as Model Context Protocol tools
// so editors and agents can request reviews without the HTTP API.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	mcp "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/server"

	"github.com/felixgeelhaar/codementor/internal/domain"
	"github.com/felixgeelhaar/codementor/internal/history"
	"github.com/felixgeelhaar/codementor/internal/quota"
)

// DefaultIdentity is the quota identity of tool calls without a user_id
const DefaultIdentity = "mcp"

// Reviewer generates a review for a snippet
type Reviewer interface {
	Generate(lang domain.Language, code string) domain.ReviewResult
}

// Server wraps the MCP server with review functionality
type Server struct {
	mcpServer *server.Server
	reviewer  Reviewer
	limiter   *quota.Limiter
	recorder  history.Recorder
	reader    history.Reader
}

// Config contains configuration for the MCP server
type Config struct {
	Version  string
	Reviewer Reviewer
	Limiter  *quota.Limiter
	// Recorder and History are optional
	Recorder history.Recorder
	History  history.Reader
}

// NewServer creates a new MCP server
func NewServer(cfg Config) *Server {
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.Limiter == nil {
		cfg.Limiter = quota.New(quota.DefaultLimit)
	}
	if cfg.Recorder == nil {
		cfg.Recorder = history.NopRecorder
	}

	s := &Server{
		reviewer: cfg.Reviewer,
		limiter:  cfg.Limiter,
		recorder: cfg.Recorder,
		reader:   cfg.History,
	}

	s.mcpServer = server.New(server.Info{
		Name:    "codementor",
		Version: cfg.Version,
	}, server.WithInstructions(`
CodeMentor runs deliberately harsh code reviews on Python, JavaScript and
TypeScript snippets. Every review returns typed findings (bug, security,
performance, design, style) and an ordered list of next steps.

Available tools:
- codementor_review: Review a snippet (consumes one free review)
- codementor_quota: Show remaining free reviews
- codementor_history: List recent reviews

Free reviews are limited per user_id; calls without a user_id share one quota.
`))

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("codementor_review").
		Description("Run a hard code review on a snippet. Consumes one free review.").
		Handler(s.handleReview)

	s.mcpServer.Tool("codementor_quota").
		Description("Show the free review allowance for a user.").
		Handler(s.handleQuota)

	s.mcpServer.Tool("codementor_history").
		Description("List the most recent reviews for a user.").
		Handler(s.handleHistory)
}

// ReviewInput is the codementor_review tool input
type ReviewInput struct {
	Language string `json:"language" jsonschema:"description=Source language,enum=python,enum=javascript,enum=typescript"`
	Code     string `json:"code" jsonschema:"description=The code snippet to review"`
	Mode     string `json:"mode,omitempty" jsonschema:"description=Review strictness (only hard is supported),enum=hard"`
	UserID   string `json:"user_id,omitempty" jsonschema:"description=Identity the free review quota is counted against"`
}

// ReviewOutput is the review result plus the caller's remaining free reviews
type ReviewOutput struct {
	domain.ReviewResult
	Remaining int `json:"remaining"`
}

// QuotaInput is the codementor_quota tool input
type QuotaInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"description=Identity to report the quota for"`
}

// QuotaOutput reports the free review allowance
type QuotaOutput struct {
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

// HistoryInput is the codementor_history tool input
type HistoryInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"description=Identity to list reviews for"`
	Limit  int    `json:"limit,omitempty" jsonschema:"description=Maximum number of reviews (default 20)"`
}

// HistoryOutput lists recent reviews, newest first
type HistoryOutput struct {
	Reviews []*domain.ReviewRecord `json:"reviews"`
	Total   int                    `json:"total"`
}

// errLimitReached carries the same wording as the HTTP 402 body
var errLimitReached = errors.New("Free review limit reached. Subscribe to continue.")

func (s *Server) handleReview(ctx context.Context, input ReviewInput) (ReviewOutput, error) {
	key := identity(input.UserID)

	decision := s.limiter.Check(key)
	if !decision.Allowed {
		return ReviewOutput{}, errLimitReached
	}

	mode := input.Mode
	if mode == "" {
		mode = string(domain.ModeHard)
	}
	req, err := domain.ValidateReviewRequest(&domain.ReviewRequest{
		Language: domain.Language(input.Language),
		Code:     input.Code,
		Mode:     domain.ReviewMode(mode),
	})
	if err != nil {
		return ReviewOutput{}, err
	}

	result := s.reviewer.Generate(req.Language, req.Code)

	if err := s.recorder.Record(ctx, history.NewRecord(key, req.Language, req.Code, result)); err != nil {
		slog.Warn("failed to record review", "reviewer", key, "source", "mcp", "error", err)
	}

	return ReviewOutput{ReviewResult: result, Remaining: decision.Remaining}, nil
}

func (s *Server) handleQuota(_ context.Context, input QuotaInput) (QuotaOutput, error) {
	key := identity(input.UserID)
	return QuotaOutput{
		Limit:     s.limiter.Limit(),
		Remaining: s.limiter.Remaining(key),
	}, nil
}

func (s *Server) handleHistory(ctx context.Context, input HistoryInput) (HistoryOutput, error) {
	out := HistoryOutput{Reviews: []*domain.ReviewRecord{}}
	if s.reader == nil {
		return out, nil
	}

	key := identity(input.UserID)
	reviews, err := s.reader.ListByReviewer(ctx, key, input.Limit)
	if err != nil {
		return HistoryOutput{}, fmt.Errorf("list reviews: %w: %w", domain.ErrHistoryUnavailable, err)
	}
	total, err := s.reader.CountByReviewer(ctx, key)
	if err != nil {
		return HistoryOutput{}, fmt.Errorf("count reviews: %w: %w", domain.ErrHistoryUnavailable, err)
	}

	if reviews != nil {
		out.Reviews = reviews
	}
	out.Total = total
	return out, nil
}

func identity(userID string) string {
	if id := domain.NormalizeIdentity(userID); id != "" {
		return id
	}
	return DefaultIdentity
}

// ServeStdio starts the MCP server on stdio
func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

// ServeHTTP starts the MCP server on HTTP
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr)
}
