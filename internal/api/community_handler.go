package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/phrazzld/grover/internal/api/shared"
	"github.com/phrazzld/grover/internal/community"
	"github.com/phrazzld/grover/internal/domain"
	"github.com/phrazzld/grover/internal/platform/logger"
	"github.com/phrazzld/grover/internal/service"
	"github.com/phrazzld/grover/internal/session"
)

// CommunityHandler handles community lookups, community revisions, and
// community article HTTP requests.
type CommunityHandler struct {
	communities service.CommunityService
	sessions    SessionSaver
	logger      *slog.Logger
}

// NewCommunityHandler creates a new CommunityHandler.
func NewCommunityHandler(
	communities service.CommunityService,
	sessions SessionSaver,
	logger *slog.Logger,
) *CommunityHandler {
	if logger == nil {
		panic("logger cannot be nil for CommunityHandler") // ALLOW-PANIC
	}
	return &CommunityHandler{
		communities: communities,
		sessions:    sessions,
		logger:      logger.With(slog.String("component", "community_handler")),
	}
}

// ListCommunities handles GET /api/communities.
func (h *CommunityHandler) ListCommunities(w http.ResponseWriter, r *http.Request) {
	list, err := h.communities.ListCommunities(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list communities")
		return
	}
	if list == nil {
		list = []community.Community{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, list)
}

// GetCommunity handles GET /api/communities/{id}. Care areas to compare
// against are read from repeated or comma-separated care_area parameters.
func (h *CommunityHandler) GetCommunity(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	careAreas := domain.SplitCareAreas(r.URL.Query()["care_area"])

	details, err := h.communities.GetCommunityDetails(r.Context(), id, careAreas)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get community")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, details)
}

// Revise handles POST /api/articles/{id}/community-revision. The revision
// is returned for review and saved through CreateCommunityArticle.
func (h *CommunityHandler) Revise(w http.ResponseWriter, r *http.Request) {
	articleID, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	var req CommunityRevisionRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	res, err := h.communities.Revise(r.Context(), articleID, req.CommunityID, generateOptions(r))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to revise article")
		return
	}

	respondGeneration(w, r, h.sessions, h.logger, res.GenerationResult, nil, func(resp *GenerationResponse) {
		resp.CommunityID = res.CommunityID
		resp.CommunityName = res.CommunityName
	})
}

// SubmitBatch handles POST /api/articles/{id}/community-revisions. It answers
// 202 with one task id per community.
func (h *CommunityHandler) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	articleID, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	var req BatchRevisionRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	ids, err := h.communities.SubmitBatchRevision(r.Context(), articleID, req.CommunityIDs)
	if err != nil {
		if len(ids) > 0 {
			logger.FromContextOrDefault(r.Context(), h.logger).Warn("batch revision partially submitted",
				slog.Int64("article_id", articleID),
				slog.Int("submitted", len(ids)),
				slog.Int("requested", len(req.CommunityIDs)))
		}
		HandleAPIError(w, r, err, "Failed to submit batch revision")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, BatchRevisionResponse{TaskIDs: taskIDStrings(ids)})
}

func taskIDStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// ListArticles handles GET /api/articles/{id}/community-articles.
func (h *CommunityHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	articleID, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	list, err := h.communities.ListCommunityArticles(r.Context(), articleID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list community articles")
		return
	}
	if list == nil {
		list = []*domain.CommunityArticle{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, list)
}

// CreateArticle handles POST /api/articles/{id}/community-articles.
func (h *CommunityHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	articleID, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	var req CommunityArticleRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	ca, err := h.communities.CreateCommunityArticle(r.Context(), articleID, req.CommunityID, req.Title, req.Content)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create community article")
		return
	}

	recordSession(r, h.sessions, h.logger, func(s *session.State) { s.SelectCommunityArticle(ca.ID) })
	shared.RespondWithJSON(w, r, http.StatusCreated, ca)
}

// GetArticle handles GET /api/community-articles/{id}.
func (h *CommunityHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	ca, err := h.communities.GetCommunityArticle(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get community article")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ca)
}

// UpdateArticle handles PUT /api/community-articles/{id}.
func (h *CommunityHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateCommunityArticleRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	ca, err := h.communities.GetCommunityArticle(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get community article")
		return
	}
	ca.Title = req.Title
	ca.Content = req.Content
	ca.Schema = req.Schema
	ca.MetaTitle = req.MetaTitle
	ca.MetaDescription = req.MetaDescription

	if err := h.communities.UpdateCommunityArticle(r.Context(), ca); err != nil {
		HandleAPIError(w, r, err, "Failed to update community article")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ca)
}

// DeleteArticle handles DELETE /api/community-articles/{id}.
func (h *CommunityHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.communities.DeleteCommunityArticle(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete community article")
		return
	}
	recordSession(r, h.sessions, h.logger, func(s *session.State) {
		if s.CommunityArticleID != nil && *s.CommunityArticleID == id {
			s.CommunityArticleID = nil
		}
	})
	w.WriteHeader(http.StatusNoContent)
}
