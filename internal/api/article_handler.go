package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/grover/internal/api/shared"
	"github.com/phrazzld/grover/internal/domain"
	"github.com/phrazzld/grover/internal/platform/logger"
	"github.com/phrazzld/grover/internal/service"
	"github.com/phrazzld/grover/internal/session"
)

// ArticleHandler handles base article HTTP requests, including the
// generation endpoints.
//
// Generation endpoints answer 200 whether or not the run succeeded; the
// response's succeeded and failure_reason fields carry the verdict. Every
// run's usage is appended to the session history.
type ArticleHandler struct {
	articles service.ArticleService
	sessions SessionSaver
	logger   *slog.Logger
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(articles service.ArticleService, sessions SessionSaver, logger *slog.Logger) *ArticleHandler {
	if logger == nil {
		panic("logger cannot be nil for ArticleHandler") // ALLOW-PANIC
	}
	return &ArticleHandler{
		articles: articles,
		sessions: sessions,
		logger:   logger.With(slog.String("component", "article_handler")),
	}
}

// List handles GET /api/projects/{id}/articles.
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	articles, err := h.articles.List(r.Context(), projectID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list articles")
		return
	}
	if articles == nil {
		articles = []*domain.Article{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, articles)
}

// Create handles POST /api/projects/{id}/articles. The new article becomes
// the selected one.
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	var req ArticleRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	article, err := h.articles.Create(r.Context(), projectID, req.Outline, req.Length, req.Sections)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create article")
		return
	}

	recordSession(r, h.sessions, h.logger, func(s *session.State) { s.SelectArticle(projectID, article.ID) })
	logger.FromContextOrDefault(r.Context(), h.logger).Info("article created",
		slog.Int64("project_id", projectID),
		slog.Int64("article_id", article.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, article)
}

// Get handles GET /api/articles/{id}.
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	article, err := h.articles.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get article")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, article)
}

// UpdateSettings handles PUT /api/articles/{id}.
func (h *ArticleHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	var req ArticleRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	article, err := h.articles.UpdateSettings(r.Context(), id, req.Outline, req.Length, req.Sections)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update article")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, article)
}

// Delete handles DELETE /api/articles/{id}.
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.articles.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete article")
		return
	}
	recordSession(r, h.sessions, h.logger, func(s *session.State) { s.Forget(id) })
	w.WriteHeader(http.StatusNoContent)
}

// Select handles POST /api/articles/{id}/select.
func (h *ArticleHandler) Select(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	article, err := h.articles.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get article")
		return
	}

	state, err := updateSession(r, h.sessions, func(s *session.State) { s.SelectArticle(article.ProjectID, id) })
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(state))
}

// GenerateTitleOutline handles POST /api/articles/{id}/title-outline/generate.
func (h *ArticleHandler) GenerateTitleOutline(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	res, err := h.articles.GenerateTitleOutline(r.Context(), id, generateOptions(r))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate title and outline")
		return
	}

	respondGeneration(w, r, h.sessions, h.logger, res.GenerationResult, nil, func(resp *GenerationResponse) {
		resp.Title = res.Title
		resp.Outline = res.Outline
	})
}

// SaveTitleOutline handles PUT /api/articles/{id}/title-outline.
func (h *ArticleHandler) SaveTitleOutline(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	var req TitleOutlineRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := h.articles.SaveTitleOutline(r.Context(), id, req.Title, req.Outline); err != nil {
		HandleAPIError(w, r, err, "Failed to save title and outline")
		return
	}
	h.respondArticle(w, r, id)
}

// GenerateContent handles POST /api/articles/{id}/content/generate. A
// successful payload becomes the session draft of the article.
func (h *ArticleHandler) GenerateContent(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	res, err := h.articles.GenerateContent(r.Context(), id, generateOptions(r))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate content")
		return
	}

	respondGeneration(w, r, h.sessions, h.logger, res, func(s *session.State) {
		if res.Outcome.Succeeded {
			s.SetDraft(id, res.Outcome.Payload)
		}
	}, nil)
}

// SaveContent handles PUT /api/articles/{id}/content and drops the session
// draft.
func (h *ArticleHandler) SaveContent(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	var req ContentRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := h.articles.SaveContent(r.Context(), id, req.Content); err != nil {
		HandleAPIError(w, r, err, "Failed to save content")
		return
	}
	recordSession(r, h.sessions, h.logger, func(s *session.State) { s.SetDraft(id, "") })
	h.respondArticle(w, r, id)
}

// Refine handles POST /api/articles/{id}/refine.
func (h *ArticleHandler) Refine(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	var req RefineRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	content := req.Content
	if content == "" {
		content = currentSession(r).Drafts[id]
	}

	res, err := h.articles.Refine(r.Context(), id, content, req.Instructions, generateOptions(r))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to refine content")
		return
	}

	respondGeneration(w, r, h.sessions, h.logger, res, func(s *session.State) {
		s.SetRefine(id, req.Instructions)
		if res.Outcome.Succeeded {
			s.SetDraft(id, res.Outcome.Payload)
		}
	}, nil)
}

// FixFormat handles POST /api/articles/{id}/fix-format. The article is
// updated when the run succeeds.
func (h *ArticleHandler) FixFormat(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	res, err := h.articles.FixFormat(r.Context(), id, generateOptions(r))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to fix format")
		return
	}

	respondGeneration(w, r, h.sessions, h.logger, res, func(s *session.State) {
		if res.Outcome.Succeeded {
			s.SetDraft(id, "")
		}
	}, nil)
}

// GenerateMeta handles POST /api/articles/{id}/meta/generate.
func (h *ArticleHandler) GenerateMeta(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	res, err := h.articles.GenerateMeta(r.Context(), id, generateOptions(r))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate meta tags")
		return
	}

	respondGeneration(w, r, h.sessions, h.logger, res.GenerationResult, nil, func(resp *GenerationResponse) {
		resp.MetaTitle = res.MetaTitle
		resp.MetaDescription = res.MetaDescription
	})
}

// HTML handles GET /api/articles/{id}/html.
func (h *ArticleHandler) HTML(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	html, err := h.articles.RenderHTML(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to render article")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(html)); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Error("failed to write html response",
			slog.String("error", err.Error()))
	}
}

func (h *ArticleHandler) respondArticle(w http.ResponseWriter, r *http.Request, id int64) {
	article, err := h.articles.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get article")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, article)
}
