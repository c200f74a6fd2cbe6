package handlers

import (
	"net/http/httptest"
	"testing"
)

func TestResolveReviewerKey(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{"header wins", "user-1", "", "10.0.0.1:1234", "user-1"},
		{"header trimmed", "  user-2  ", "", "10.0.0.1:1234", "user-2"},
		{"blank header falls back to address", "   ", "", "10.0.0.1:1234", "10.0.0.1"},
		{"ipv6 address", "", "", "[::1]:8080", "::1"},
		{"address without port", "", "", "10.0.0.2", "10.0.0.2"},
		{"forwarded header ignored", "", "203.0.113.9", "10.0.0.3:1", "10.0.0.3"},
		{"nothing known", "", "", "", AnonymousKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/review", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.header != "" {
				req.Header.Set(HeaderUserID, tt.header)
			}
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}

			if got := ResolveReviewerKey(req); got != tt.want {
				t.Errorf("ResolveReviewerKey() = %q; want %q", got, tt.want)
			}
		})
	}
}
