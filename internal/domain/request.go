package domain

import "strings"

// Validation messages returned to callers verbatim
const (
	MsgBodyRequired     = "Request body is required."
	MsgFieldsRequired   = "language, code, and mode are required."
	MsgLanguageNotAllow = "language must be python, javascript, or typescript."
	MsgModeNotAllowed   = "mode must be hard."
)

// ReviewRequest is the inbound payload of a hard review
type ReviewRequest struct {
	Language Language   `json:"language"`
	Code     string     `json:"code"`
	Mode     ReviewMode `json:"mode"`
}

// ValidateReviewRequest checks a decoded request body. A nil body means the
// caller sent nothing decodable. On success the request is returned by value.
func ValidateReviewRequest(req *ReviewRequest) (ReviewRequest, error) {
	if req == nil {
		return ReviewRequest{}, NewValidationError(MsgBodyRequired, nil)
	}

	if req.Language == "" || req.Code == "" || req.Mode == "" {
		return ReviewRequest{}, NewValidationError(MsgFieldsRequired, nil)
	}

	if !req.Language.IsSupported() {
		return ReviewRequest{}, NewValidationError(MsgLanguageNotAllow, ErrUnsupportedLanguage)
	}

	if req.Mode != ModeHard {
		return ReviewRequest{}, NewValidationError(MsgModeNotAllowed, ErrUnsupportedMode)
	}

	return *req, nil
}

// NormalizeIdentity trims a caller-declared identity; blank values become empty
func NormalizeIdentity(id string) string {
	return strings.TrimSpace(id)
}
