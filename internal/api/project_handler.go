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

// ProjectHandler handles project HTTP requests.
type ProjectHandler struct {
	projects service.ProjectService
	sessions SessionSaver
	logger   *slog.Logger
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projects service.ProjectService, sessions SessionSaver, logger *slog.Logger) *ProjectHandler {
	if logger == nil {
		panic("logger cannot be nil for ProjectHandler") // ALLOW-PANIC
	}
	return &ProjectHandler{
		projects: projects,
		sessions: sessions,
		logger:   logger.With(slog.String("component", "project_handler")),
	}
}

// List handles GET /api/projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list projects")
		return
	}
	if projects == nil {
		projects = []*domain.Project{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, projects)
}

// Create handles POST /api/projects. The new project becomes the selected one.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProjectRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	project := &domain.Project{IsBase: true}
	req.apply(project)
	if err := h.projects.Create(r.Context(), project); err != nil {
		HandleAPIError(w, r, err, "Failed to create project")
		return
	}

	recordSession(r, h.sessions, h.logger, func(s *session.State) { s.SelectProject(project.ID) })
	logger.FromContextOrDefault(r.Context(), h.logger).Info("project created",
		slog.Int64("project_id", project.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, project)
}

// Get handles GET /api/projects/{id}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	project, err := h.projects.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get project")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, project)
}

// Update handles PUT /api/projects/{id}.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	var req ProjectRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	project, err := h.projects.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get project")
		return
	}
	req.apply(project)
	if err := h.projects.Update(r.Context(), project); err != nil {
		HandleAPIError(w, r, err, "Failed to update project")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, project)
}

// Delete handles DELETE /api/projects/{id}.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.projects.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete project")
		return
	}

	recordSession(r, h.sessions, h.logger, func(s *session.State) {
		if s.ProjectID != nil && *s.ProjectID == id {
			s.ProjectID = nil
			s.ArticleID = nil
			s.CommunityArticleID = nil
		}
	})
	w.WriteHeader(http.StatusNoContent)
}

// Select handles POST /api/projects/{id}/select.
func (h *ProjectHandler) Select(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.projects.Get(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to get project")
		return
	}

	state, err := updateSession(r, h.sessions, func(s *session.State) { s.SelectProject(id) })
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(state))
}

// Duplicate handles POST /api/projects/{id}/duplicate.
func (h *ProjectHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	var req DuplicateProjectRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	project, err := h.projects.Duplicate(r.Context(), id, req.Name, req.ChangesNote)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to duplicate project")
		return
	}

	recordSession(r, h.sessions, h.logger, func(s *session.State) { s.SelectProject(project.ID) })
	logger.FromContextOrDefault(r.Context(), h.logger).Info("project duplicated",
		slog.Int64("original_project_id", id),
		slog.Int64("project_id", project.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, project)
}
