package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/grover/internal/api/shared"
	"github.com/phrazzld/grover/internal/domain"
	"github.com/phrazzld/grover/internal/service"
)

// KeywordHandler handles keyword HTTP requests.
type KeywordHandler struct {
	keywords service.KeywordService
	logger   *slog.Logger
}

// NewKeywordHandler creates a new KeywordHandler.
func NewKeywordHandler(keywords service.KeywordService, logger *slog.Logger) *KeywordHandler {
	if logger == nil {
		panic("logger cannot be nil for KeywordHandler") // ALLOW-PANIC
	}
	return &KeywordHandler{
		keywords: keywords,
		logger:   logger.With(slog.String("component", "keyword_handler")),
	}
}

// List handles GET /api/projects/{id}/keywords.
func (h *KeywordHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	keywords, err := h.keywords.List(r.Context(), projectID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list keywords")
		return
	}
	if keywords == nil {
		keywords = []*domain.Keyword{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, keywords)
}

// Add handles POST /api/projects/{id}/keywords.
func (h *KeywordHandler) Add(w http.ResponseWriter, r *http.Request) {
	projectID, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	var req KeywordRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	keyword, err := h.keywords.Add(r.Context(), projectID, req.Keyword, req.IsPrimary)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add keyword")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, keyword)
}

// Remove handles DELETE /api/keywords/{id}.
func (h *KeywordHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.keywords.Remove(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to remove keyword")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Research handles POST /api/keywords/research.
func (h *KeywordHandler) Research(w http.ResponseWriter, r *http.Request) {
	var req KeywordResearchRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	research, err := h.keywords.Research(r.Context(), req.Phrase)
	if err != nil {
		HandleAPIError(w, r, err, "Keyword research failed")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, research)
}
