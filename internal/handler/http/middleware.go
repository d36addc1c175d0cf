package http

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	sessionIDKey contextKey = "session_id"
	sessionKey   contextKey = "session"
)

// Session ids become part of storage keys, so the ":" separator is excluded.
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9._~-]{1,128}$`)

// Sessions opens and closes storefront sessions.
type Sessions interface {
	Open(ctx context.Context, sessionID, userID string) *session.Session
	Close(sessionID string) bool
}

// SessionFromHeader is middleware that reads the X-Session-ID header and
// stores it in the request context. A missing header is rejected with 401
// Unauthorized, a malformed one with 400.
func SessionFromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := middleware.SessionIDFromContext(r.Context())
		if sid == "" {
			sid = strings.TrimSpace(r.Header.Get(middleware.HeaderSessionID))
		}
		if sid == "" {
			httputil.WriteErrorCode(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "X-Session-ID header is required")
			return
		}
		if !sessionIDPattern.MatchString(sid) {
			httputil.WriteErrorCode(w, r, http.StatusBadRequest, "INVALID_INPUT", "X-Session-ID header is malformed")
			return
		}
		ctx := context.WithValue(r.Context(), sessionIDKey, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OpenSession attaches the live session to the request context. It must be
// mounted after SessionFromHeader.
func OpenSession(sessions Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := middleware.UserIDFromContext(r.Context())
			if userID == "" {
				userID = strings.TrimSpace(r.Header.Get(middleware.HeaderUserID))
			}
			s := sessions.Open(r.Context(), sessionIDFromContext(r.Context()), userID)
			ctx := context.WithValue(r.Context(), sessionKey, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionIDFromContext(ctx context.Context) string {
	sid, _ := ctx.Value(sessionIDKey).(string)
	return sid
}

func sessionFromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey).(*session.Session)
	return s
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteErrorCode(w, r, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
