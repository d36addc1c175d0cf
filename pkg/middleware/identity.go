package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/utafrali/storefront/pkg/logger"
)

// Identity headers set by the storefront UI and the gateway.
const (
	HeaderSessionID = "X-Session-ID"
	HeaderUserID    = "X-User-ID"
)

// Identity copies the session and signed-in user headers into the request
// context, where logging, tracing and rate limiting pick them up. Absent
// headers leave the context untouched.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if sid := strings.TrimSpace(r.Header.Get(HeaderSessionID)); sid != "" {
			ctx = logger.WithSessionID(ctx, sid)
		}
		if uid := strings.TrimSpace(r.Header.Get(HeaderUserID)); uid != "" {
			ctx = logger.WithUserID(ctx, uid)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext returns the user recorded by Identity.
func UserIDFromContext(ctx context.Context) string {
	return logger.UserIDFromContext(ctx)
}

// SessionIDFromContext returns the session recorded by Identity.
func SessionIDFromContext(ctx context.Context) string {
	return logger.SessionIDFromContext(ctx)
}
