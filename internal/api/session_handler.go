package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/grover/internal/api/shared"
	"github.com/phrazzld/grover/internal/session"
)

// SessionHandler exposes the per-browser working state.
type SessionHandler struct {
	sessions SessionSaver
	logger   *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions SessionSaver, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		panic("logger cannot be nil for SessionHandler") // ALLOW-PANIC
	}
	return &SessionHandler{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "session_handler")),
	}
}

// Get handles GET /api/session.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(currentSession(r)))
}

// SetModel handles PUT /api/session/model. An empty model selects the
// configured default.
func (h *SessionHandler) SetModel(w http.ResponseWriter, r *http.Request) {
	var req SessionModelRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	state, err := updateSession(r, h.sessions, func(s *session.State) {
		s.Model = strings.TrimSpace(req.Model)
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(state))
}

// SetDebug handles PUT /api/session/debug.
func (h *SessionHandler) SetDebug(w http.ResponseWriter, r *http.Request) {
	var req SessionDebugRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	state, err := updateSession(r, h.sessions, func(s *session.State) {
		s.Debug = *req.Debug
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(state))
}

// ClearUsage handles DELETE /api/session/usage.
func (h *SessionHandler) ClearUsage(w http.ResponseWriter, r *http.Request) {
	if _, err := updateSession(r, h.sessions, (*session.State).ClearUsage); err != nil {
		HandleAPIError(w, r, err, "Failed to update session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
