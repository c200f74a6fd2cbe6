package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/felixgeelhaar/codementor/internal/api/middleware"
	"github.com/felixgeelhaar/codementor/internal/domain"
	"github.com/felixgeelhaar/codementor/internal/history"
	"github.com/felixgeelhaar/codementor/internal/quota"
)

// HeaderQuotaRemaining reports the caller's remaining free reviews
const HeaderQuotaRemaining = "X-Review-Quota-Remaining"

// MaxBodyBytes bounds a review request body (10 MiB)
const MaxBodyBytes = 10 << 20

// Reviewer generates a review for a snippet
type Reviewer interface {
	Generate(lang domain.Language, code string) domain.ReviewResult
}

// ReviewHandler handles review endpoints
type ReviewHandler struct {
	reviewer Reviewer
	limiter  *quota.Limiter
	recorder history.Recorder
	reader   history.Reader
}

// NewReviewHandler creates a new review handler. recorder and reader may be nil.
func NewReviewHandler(reviewer Reviewer, limiter *quota.Limiter, recorder history.Recorder, reader history.Reader) *ReviewHandler {
	if recorder == nil {
		recorder = history.NopRecorder
	}
	return &ReviewHandler{
		reviewer: reviewer,
		limiter:  limiter,
		recorder: recorder,
		reader:   reader,
	}
}

// QuotaResponse is the body of GET /api/review/quota
type QuotaResponse struct {
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

// HistoryResponse is the body of GET /api/review/history
type HistoryResponse struct {
	Reviews []*domain.ReviewRecord `json:"reviews"`
	Total   int                    `json:"total"`
}

// Review runs a hard review. The quota is consumed before the body is
// validated, so a rejected request still counts against the caller.
func (h *ReviewHandler) Review(w http.ResponseWriter, r *http.Request) {
	key := ResolveReviewerKey(r)

	decision := h.limiter.Check(key)
	if !decision.Allowed {
		WriteError(w, r, http.StatusPaymentRequired, ErrLimitReached().WithCause(domain.ErrQuotaExceeded))
		return
	}

	req, err := domain.ValidateReviewRequest(decodeReviewRequest(w, r))
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			WriteError(w, r, http.StatusBadRequest, ErrValidation(verr.Message, err))
			return
		}
		InternalError(w, r, "failed to validate request", err)
		return
	}

	result := h.reviewer.Generate(req.Language, req.Code)

	if err := h.recorder.Record(r.Context(), history.NewRecord(key, req.Language, req.Code, result)); err != nil {
		slog.Warn("failed to record review",
			"reviewer", key,
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
	}

	slog.Info("review completed",
		"reviewer", key,
		"language", req.Language,
		"findings", len(result.Findings),
		"remaining", decision.Remaining,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	w.Header().Set(HeaderQuotaRemaining, strconv.Itoa(decision.Remaining))
	WriteJSON(w, http.StatusOK, result)
}

// Quota reports the caller's allowance without consuming it
func (h *ReviewHandler) Quota(w http.ResponseWriter, r *http.Request) {
	key := ResolveReviewerKey(r)
	WriteJSON(w, http.StatusOK, QuotaResponse{
		Limit:     h.limiter.Limit(),
		Remaining: h.limiter.Remaining(key),
	})
}

// History lists the caller's most recent reviews. ?limit=N bounds the page.
func (h *ReviewHandler) History(w http.ResponseWriter, r *http.Request) {
	resp := HistoryResponse{Reviews: []*domain.ReviewRecord{}}
	if h.reader == nil {
		WriteJSON(w, http.StatusOK, resp)
		return
	}

	key := ResolveReviewerKey(r)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	reviews, err := h.reader.ListByReviewer(r.Context(), key, limit)
	if err != nil {
		writeHistoryUnavailable(w, r, err)
		return
	}
	total, err := h.reader.CountByReviewer(r.Context(), key)
	if err != nil {
		writeHistoryUnavailable(w, r, err)
		return
	}

	if reviews != nil {
		resp.Reviews = reviews
	}
	resp.Total = total
	WriteJSON(w, http.StatusOK, resp)
}

func writeHistoryUnavailable(w http.ResponseWriter, r *http.Request, err error) {
	WriteError(w, r, http.StatusServiceUnavailable, ErrHistoryUnavailable(err))
}

// decodeReviewRequest returns nil when the body is absent or not a JSON object.
// Fields of an object body go through fieldText, so a field of the wrong
// JSON type still reaches validation and fails the rule it breaks.
func decodeReviewRequest(w http.ResponseWriter, r *http.Request) *domain.ReviewRequest {
	if r.Body == nil {
		return nil
	}
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	var fields map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&fields); err != nil {
		if !errors.Is(err, io.EOF) {
			slog.Debug("undecodable review body", "error", err,
				"request_id", middleware.GetRequestID(r.Context()))
		}
		return nil
	}
	if fields == nil {
		return nil
	}

	return &domain.ReviewRequest{
		Language: domain.Language(fieldText(fields["language"])),
		Code:     fieldText(fields["code"]),
		Mode:     domain.ReviewMode(fieldText(fields["mode"])),
	}
}

// fieldText reads one body field as text. Strings are used as sent; null,
// false and 0 count as missing; any other value keeps its JSON text so it is
// present but never an allowed language or mode.
func fieldText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch v := v.(type) {
	case string:
		return v
	case nil:
		return ""
	case bool:
		if !v {
			return ""
		}
	case float64:
		if v == 0 {
			return ""
		}
	}
	return string(bytes.TrimSpace(raw))
}
