package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/grover/internal/api"
	apiMiddleware "github.com/phrazzld/grover/internal/api/middleware"
)

// handlers groups the API handlers mounted by newRouter.
type handlers struct {
	session   *api.SessionHandler
	project   *api.ProjectHandler
	keyword   *api.KeywordHandler
	article   *api.ArticleHandler
	community *api.CommunityHandler
	task      *api.TaskHandler
}

// setupRouter creates the application router from the application's services.
func (app *application) setupRouter() http.Handler {
	h := handlers{
		session:   api.NewSessionHandler(app.sessions, app.logger),
		project:   api.NewProjectHandler(app.projectService, app.sessions, app.logger),
		keyword:   api.NewKeywordHandler(app.keywordService, app.logger),
		article:   api.NewArticleHandler(app.articleService, app.sessions, app.logger),
		community: api.NewCommunityHandler(app.communityService, app.sessions, app.logger),
		task:      api.NewTaskHandler(app.taskRunner, app.logger),
	}
	return newRouter(h, app.sessionHandler.Handler, app.logger)
}

// newRouter registers every route. sessions wraps the /api routes.
func newRouter(h handlers, sessions func(http.Handler) http.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(logger))

	r.Route("/api", func(r chi.Router) {
		r.Use(sessions)

		r.Get("/session", h.session.Get)
		r.Put("/session/model", h.session.SetModel)
		r.Put("/session/debug", h.session.SetDebug)
		r.Delete("/session/usage", h.session.ClearUsage)

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.project.List)
			r.Post("/", h.project.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.project.Get)
				r.Put("/", h.project.Update)
				r.Delete("/", h.project.Delete)
				r.Post("/select", h.project.Select)
				r.Post("/duplicate", h.project.Duplicate)
				r.Get("/keywords", h.keyword.List)
				r.Post("/keywords", h.keyword.Add)
				r.Get("/articles", h.article.List)
				r.Post("/articles", h.article.Create)
			})
		})

		r.Post("/keywords/research", h.keyword.Research)
		r.Delete("/keywords/{id}", h.keyword.Remove)

		r.Route("/articles/{id}", func(r chi.Router) {
			r.Get("/", h.article.Get)
			r.Put("/", h.article.UpdateSettings)
			r.Delete("/", h.article.Delete)
			r.Post("/select", h.article.Select)
			r.Post("/title-outline/generate", h.article.GenerateTitleOutline)
			r.Put("/title-outline", h.article.SaveTitleOutline)
			r.Post("/content/generate", h.article.GenerateContent)
			r.Put("/content", h.article.SaveContent)
			r.Post("/refine", h.article.Refine)
			r.Post("/fix-format", h.article.FixFormat)
			r.Post("/meta/generate", h.article.GenerateMeta)
			r.Get("/html", h.article.HTML)
			r.Post("/community-revision", h.community.Revise)
			r.Post("/community-revisions", h.community.SubmitBatch)
			r.Get("/community-articles", h.community.ListArticles)
			r.Post("/community-articles", h.community.CreateArticle)
		})

		r.Get("/communities", h.community.ListCommunities)
		r.Get("/communities/{id}", h.community.GetCommunity)

		r.Route("/community-articles/{id}", func(r chi.Router) {
			r.Get("/", h.community.GetArticle)
			r.Put("/", h.community.UpdateArticle)
			r.Delete("/", h.community.DeleteArticle)
		})

		r.Get("/tasks/{id}", h.task.Get)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("Failed to write health check response", slog.String("error", err.Error()))
		}
	})

	return r
}
