package http

import (
	"log/slog"
	"net/http"
)

// SessionHandler handles session lifecycle endpoints.
type SessionHandler struct {
	sessions Sessions
	logger   *slog.Logger
}

// NewSessionHandler creates a new session HTTP handler.
func NewSessionHandler(sessions Sessions, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

// EndSession handles DELETE /api/v1/session. The stores are torn down; their
// persisted slots are kept.
func (h *SessionHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	sid := sessionIDFromContext(r.Context())
	if h.sessions.Close(sid) {
		h.logger.DebugContext(r.Context(), "session ended by client", slog.String("session_id", sid))
	}
	w.WriteHeader(http.StatusNoContent)
}
