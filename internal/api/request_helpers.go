package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/grover/internal/api/shared"
	"github.com/phrazzld/grover/internal/platform/logger"
	"github.com/phrazzld/grover/internal/redact"
	"github.com/phrazzld/grover/internal/service"
	"github.com/phrazzld/grover/internal/session"
)

var timeNow = time.Now

// SessionSaver persists session state after a handler changes it.
type SessionSaver interface {
	Save(ctx context.Context, state session.State) error
}

// getPathID extracts a positive integer id from the URL path parameters.
func getPathID(r *http.Request, paramName string) (int64, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidPathID, paramName)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidPathID, paramName, raw)
	}
	return id, nil
}

// handlePathID is getPathID that writes the error response itself.
func handlePathID(w http.ResponseWriter, r *http.Request, paramName string) (int64, bool) {
	id, err := getPathID(r, paramName)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return 0, false
	}
	return id, true
}

// currentSession returns a copy of the request's session state. Requests
// that bypassed the session middleware get an empty state.
func currentSession(r *http.Request) session.State {
	state, ok := session.FromContext(r.Context())
	if !ok {
		return session.New("", timeNow())
	}
	return state
}

// generateOptions returns the generation settings chosen in the session.
func generateOptions(r *http.Request) service.GenerateOptions {
	return service.GenerateOptions{Model: currentSession(r).Model}
}

// updateSession applies fn to a copy of the session and saves it.
func updateSession(r *http.Request, saver SessionSaver, fn func(*session.State)) (session.State, error) {
	state := currentSession(r)
	fn(&state)
	state.UpdatedAt = timeNow().UTC()
	if state.ID == "" || saver == nil {
		return state, nil
	}
	if err := saver.Save(r.Context(), state); err != nil {
		return state, fmt.Errorf("failed to save session: %w", err)
	}
	return state, nil
}

// recordSession is updateSession for bookkeeping that must not fail the
// request. Save errors are logged.
func recordSession(r *http.Request, saver SessionSaver, fallback *slog.Logger, fn func(*session.State)) session.State {
	state, err := updateSession(r, saver, fn)
	if err != nil {
		logger.FromContextOrDefault(r.Context(), fallback).Warn("session update failed",
			slog.String("error", redact.Error(err)))
	}
	return state
}

// respondGeneration records the run's usage in the session, applies update,
// and writes the generation response. fill adds operation-specific fields.
func respondGeneration(
	w http.ResponseWriter,
	r *http.Request,
	saver SessionSaver,
	fallback *slog.Logger,
	res *service.GenerationResult,
	update func(*session.State),
	fill func(*GenerationResponse),
) {
	state := recordSession(r, saver, fallback, func(s *session.State) {
		s.RecordUsage(res.Usage...)
		if update != nil {
			update(s)
		}
	})

	resp := newGenerationResponse(res, state.Debug)
	if fill != nil {
		fill(&resp)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
