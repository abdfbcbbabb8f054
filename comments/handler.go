package comments

import (
	"net/http"
	"strconv"

	// `chi` is used here for routing comment-related API endpoints.
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/devactivity/dasar-actix-web/apperror"
	"github.com/devactivity/dasar-actix-web/auth"
	"github.com/devactivity/dasar-actix-web/respond"
	"github.com/devactivity/dasar-actix-web/validation"
)

// CommentHandler handles HTTP requests for comments.
// It receives HTTP requests, delegates business logic to the `CommentService`, and formulates HTTP responses.
type CommentHandler struct {
	service   CommentService
	validator *validation.Validator
	logger    *zap.Logger
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(service CommentService, validator *validation.Validator, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{service: service, validator: validator, logger: logger}
}

// RegisterRoutes registers the comment API routes with a `chi.Router`.
// Comments live under an article, so the routes carry the full `/articles/{slug}/comments`
// pattern and router is expected to be the `/api/v1` router shared with the articles handler.
func (h *CommentHandler) RegisterRoutes(router chi.Router, requireAuth, optionalAuth func(http.Handler) http.Handler) {
	router.With(optionalAuth).Get("/articles/{slug}/comments", h.listComments)
	router.With(requireAuth).Post("/articles/{slug}/comments", h.addComment)
	router.With(requireAuth).Delete("/articles/{slug}/comments/{id}", h.deleteComment)
}

// listComments godoc
// @Summary List comments
// @Description Lists the comments of an article, oldest first.
// @Tags Comments
// @Produce json
// @Param slug path string true "Article slug"
// @Success 200 {object} comments.CommentsResponse
// @Failure 404 {object} apperror.ErrorResponse "Article not found"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /api/v1/articles/{slug}/comments [get]
func (h *CommentHandler) listComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.service.ListComments(r.Context(), chi.URLParam(r, "slug"), auth.ViewerFromContext(r.Context()))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, CommentsResponse{Comments: comments})
}

// addComment godoc
// @Summary Add comment
// @Tags Comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Article slug"
// @Param comment body comments.NewCommentRequest true "Comment to add"
// @Success 201 {object} comments.CommentResponse
// @Failure 400 {object} apperror.ErrorResponse "Validation failed"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 404 {object} apperror.ErrorResponse "Article not found"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /api/v1/articles/{slug}/comments [post]
func (h *CommentHandler) addComment(w http.ResponseWriter, r *http.Request) {
	// Who is posting this comment? The JWT middleware put the caller's claims into the context.
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, r, h.logger, apperror.NewAuthError("authentication required", nil))
		return
	}

	var req NewCommentRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	if err := h.validator.Validate(req.Comment); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	comment, err := h.service.AddComment(r.Context(), chi.URLParam(r, "slug"), userID, req.Comment)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusCreated, CommentResponse{Comment: *comment})
}

// deleteComment godoc
// @Summary Delete comment
// @Tags Comments
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Article slug"
// @Param id path int true "Comment id"
// @Success 200 {object} respond.Message
// @Failure 400 {object} apperror.ErrorResponse "Invalid comment id"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 403 {object} apperror.ErrorResponse "Not the author of the comment"
// @Failure 404 {object} apperror.ErrorResponse "Article or comment not found"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /api/v1/articles/{slug}/comments/{id} [delete]
func (h *CommentHandler) deleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, r, h.logger, apperror.NewAuthError("authentication required", nil))
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		respond.Error(w, r, h.logger, apperror.NewBadRequestError("invalid comment id", err))
		return
	}

	if err := h.service.DeleteComment(r.Context(), chi.URLParam(r, "slug"), int32(id), userID); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, respond.Message{Message: "Comment deleted successfully"})
}
