package common

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ErrInvalidSession is returned for {session} parameters that are not uuids.
var ErrInvalidSession = errors.New("invalid session id")

// SessionID returns the canonical {session} URL parameter. Storefront sessions are
// uuids issued by POST /api/v1/sessions.
func SessionID(r *http.Request) (string, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "session"))
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", ErrInvalidSession
	}
	return id.String(), nil
}

// ClientIP returns the caller's address. chi's RealIP middleware has already folded
// X-Forwarded-For and X-Real-IP into RemoteAddr when mounted; the headers are read
// here only for handlers served without it.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	if addr != "" {
		return addr
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	return strings.TrimSpace(r.Header.Get("X-Real-IP"))
}
