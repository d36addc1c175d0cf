package middleware

import (
	"net/http"
)

// NoStore marks responses as uncacheable. Session-scoped snapshots must never
// be served from a shared cache.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Add("Vary", HeaderSessionID)
		next.ServeHTTP(w, r)
	})
}
