package handlers

import (
	"net"
	"net/http"
	"strings"

	"github.com/felixgeelhaar/codementor/internal/domain"
)

// HeaderUserID is the caller-declared identity header
const HeaderUserID = "X-User-Id"

// AnonymousKey is the identity used when nothing else is known
const AnonymousKey = "anonymous"

// ResolveReviewerKey picks the quota identity for a request: the trimmed
// X-User-Id header, else the peer address, else "anonymous".
// Forwarding headers are ignored so a client cannot mint fresh identities.
func ResolveReviewerKey(r *http.Request) string {
	if id := domain.NormalizeIdentity(r.Header.Get(HeaderUserID)); id != "" {
		return id
	}
	if host := remoteHost(r.RemoteAddr); host != "" {
		return host
	}
	return AnonymousKey
}

func remoteHost(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
