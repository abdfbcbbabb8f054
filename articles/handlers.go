package articles

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/devactivity/dasar-actix-web/apperror"
	"github.com/devactivity/dasar-actix-web/auth"
	"github.com/devactivity/dasar-actix-web/respond"
	"github.com/devactivity/dasar-actix-web/validation"
)

// Service is the part of ArticleService used by the HTTP handlers.
type Service interface {
	GetArticleView(ctx context.Context, slug string, viewerID *uuid.UUID) (*ArticleView, error)
	ListArticles(ctx context.Context, filter ListFilter, viewerID *uuid.UUID) (*ArticleListView, error)
	FeedArticles(ctx context.Context, userID uuid.UUID, page Page) (*ArticleListView, error)
	CreateArticle(ctx context.Context, author Actor, in NewArticle) (*ArticleView, error)
	UpdateArticle(ctx context.Context, slug string, actor Actor, changes ArticleChanges) (*ArticleView, error)
	DeleteArticle(ctx context.Context, slug string, actor Actor) error
	Favorite(ctx context.Context, slug string, userID uuid.UUID) (*ArticleView, error)
	Unfavorite(ctx context.Context, slug string, userID uuid.UUID) (*ArticleView, error)
	ListTags(ctx context.Context) ([]string, error)
}

// Middleware wraps a handler; the router passes the required and optional JWT middleware.
type Middleware = func(http.Handler) http.Handler

// ArticleHandler handles HTTP requests for articles, favorites and tags.
type ArticleHandler struct {
	service   Service
	validator *validation.Validator
	logger    *zap.Logger
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(service Service, validator *validation.Validator, logger *zap.Logger) *ArticleHandler {
	return &ArticleHandler{service: service, validator: validator, logger: logger}
}

// RegisterRoutes registers the article routes on router, which is expected to be mounted at /api/v1.
// Reads accept anonymous callers through optionalAuth; writes go through requireAuth.
func (h *ArticleHandler) RegisterRoutes(router chi.Router, requireAuth, optionalAuth Middleware) {
	router.With(optionalAuth).Get("/articles", h.listArticles)
	router.With(requireAuth).Post("/articles", h.createArticle)
	// Static segments win over {slug} in chi, so "feed" never reaches getArticle.
	router.With(requireAuth).Get("/articles/feed", h.feedArticles)

	router.With(optionalAuth).Get("/articles/{slug}", h.getArticle)
	router.With(requireAuth).Put("/articles/{slug}", h.updateArticle)
	router.With(requireAuth).Delete("/articles/{slug}", h.deleteArticle)

	router.With(requireAuth).Post("/articles/{slug}/favorite", h.favoriteArticle)
	router.With(requireAuth).Delete("/articles/{slug}/favorite", h.unfavoriteArticle)

	router.Get("/tags", h.listTags)
}

// listArticles godoc
// @Summary List articles
// @Description Lists articles newest first, optionally filtered by tag, author or the user who favorited them.
// @Tags Articles
// @Produce json
// @Param tag query string false "Filter by tag"
// @Param author query string false "Filter by author username"
// @Param favorited query string false "Filter by username of a user who favorited the article"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Number of articles to skip"
// @Success 200 {object} articles.ArticleListView
// @Failure 400 {object} apperror.ErrorResponse "Invalid paging parameters"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /api/v1/articles [get]
func (h *ArticleHandler) listArticles(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	query := r.URL.Query()
	filter := ListFilter{
		Tag:       optionalParam(query.Get("tag")),
		Author:    optionalParam(query.Get("author")),
		Favorited: optionalParam(query.Get("favorited")),
		Page:      page,
	}

	list, err := h.service.ListArticles(r.Context(), filter, auth.ViewerFromContext(r.Context()))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, list)
}

// feedArticles godoc
// @Summary Article feed
// @Description Lists articles written by authors the current user follows, newest first.
// @Tags Articles
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Number of articles to skip"
// @Success 200 {object} articles.ArticleListView
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /api/v1/articles/feed [get]
func (h *ArticleHandler) feedArticles(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, r, h.logger, apperror.NewAuthError("authentication required", nil))
		return
	}
	page, err := parsePage(r)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	list, err := h.service.FeedArticles(r.Context(), claims.UserID, page)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, list)
}

// getArticle godoc
// @Summary Get article
// @Tags Articles
// @Produce json
// @Param slug path string true "Article slug"
// @Success 200 {object} articles.ArticleResponse
// @Failure 404 {object} apperror.ErrorResponse "Article not found"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /api/v1/articles/{slug} [get]
func (h *ArticleHandler) getArticle(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetArticleView(r.Context(), chi.URLParam(r, "slug"), auth.ViewerFromContext(r.Context()))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, ArticleResponse{Article: *view})
}

// createArticle godoc
// @Summary Create article
// @Tags Articles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param article body articles.CreateArticleRequest true "Article to create"
// @Success 201 {object} articles.ArticleResponse
// @Failure 400 {object} apperror.ErrorResponse "Validation failed"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /api/v1/articles [post]
func (h *ArticleHandler) createArticle(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, r, h.logger, apperror.NewAuthError("authentication required", nil))
		return
	}

	var req CreateArticleRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	if err := h.validator.Validate(req.Article); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	view, err := h.service.CreateArticle(r.Context(), ActorFromClaims(claims), req.Article)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	h.logger.Info("article created", zap.String("slug", view.Slug), zap.String("author", claims.Username))
	respond.JSON(w, r, http.StatusCreated, ArticleResponse{Article: *view})
}

// updateArticle godoc
// @Summary Update article
// @Description Updates the given fields. A new title changes the slug; a tag list replaces all tags.
// @Tags Articles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Article slug"
// @Param article body articles.UpdateArticleRequest true "Fields to update"
// @Success 200 {object} articles.ArticleResponse
// @Failure 400 {object} apperror.ErrorResponse "Validation failed"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 403 {object} apperror.ErrorResponse "Not the author"
// @Failure 404 {object} apperror.ErrorResponse "Article not found"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /api/v1/articles/{slug} [put]
func (h *ArticleHandler) updateArticle(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, r, h.logger, apperror.NewAuthError("authentication required", nil))
		return
	}

	var req UpdateArticleRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	if err := h.validator.Validate(req.Article); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	view, err := h.service.UpdateArticle(r.Context(), chi.URLParam(r, "slug"), ActorFromClaims(claims), req.Article)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, ArticleResponse{Article: *view})
}

// deleteArticle godoc
// @Summary Delete article
// @Tags Articles
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Article slug"
// @Success 200 {object} respond.Message
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 403 {object} apperror.ErrorResponse "Not the author"
// @Failure 404 {object} apperror.ErrorResponse "Article not found"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /api/v1/articles/{slug} [delete]
func (h *ArticleHandler) deleteArticle(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, r, h.logger, apperror.NewAuthError("authentication required", nil))
		return
	}

	slug := chi.URLParam(r, "slug")
	if err := h.service.DeleteArticle(r.Context(), slug, ActorFromClaims(claims)); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	h.logger.Info("article deleted", zap.String("slug", slug), zap.String("author", claims.Username))
	respond.JSON(w, r, http.StatusOK, respond.Message{Message: "Article deleted successfully"})
}

// favoriteArticle godoc
// @Summary Favorite article
// @Tags Articles
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Article slug"
// @Success 201 {object} articles.ArticleResponse
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 404 {object} apperror.ErrorResponse "Article not found"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /api/v1/articles/{slug}/favorite [post]
func (h *ArticleHandler) favoriteArticle(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, r, h.logger, apperror.NewAuthError("authentication required", nil))
		return
	}

	view, err := h.service.Favorite(r.Context(), chi.URLParam(r, "slug"), userID)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusCreated, ArticleResponse{Article: *view})
}

// unfavoriteArticle godoc
// @Summary Unfavorite article
// @Tags Articles
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Article slug"
// @Success 200 {object} articles.ArticleResponse
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 404 {object} apperror.ErrorResponse "Article not found or not favorited"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /api/v1/articles/{slug}/favorite [delete]
func (h *ArticleHandler) unfavoriteArticle(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, r, h.logger, apperror.NewAuthError("authentication required", nil))
		return
	}

	view, err := h.service.Unfavorite(r.Context(), chi.URLParam(r, "slug"), userID)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, ArticleResponse{Article: *view})
}

// listTags godoc
// @Summary List tags
// @Tags Articles
// @Produce json
// @Success 200 {object} articles.TagsResponse
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /api/v1/tags [get]
func (h *ArticleHandler) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.ListTags(r.Context())
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, TagsResponse{Tags: tags})
}

// parsePage reads limit and offset from the query string. Missing values take the defaults;
// values that are not non-negative integers are rejected.
func parsePage(r *http.Request) (Page, error) {
	var page Page
	details := apperror.FieldErrors{}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &page.Limit}, {"offset", &page.Offset}} {
		raw := r.URL.Query().Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			details.Add(p.name, "range", "must be a non-negative integer")
			continue
		}
		*p.dst = n
	}
	if len(details) > 0 {
		return Page{}, apperror.NewValidationError(details)
	}
	return page.Normalize(), nil
}

func optionalParam(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
