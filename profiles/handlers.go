package profiles

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/devactivity/dasar-actix-web/apperror"
	"github.com/devactivity/dasar-actix-web/auth"
	"github.com/devactivity/dasar-actix-web/respond"
)

// Service is the part of ProfileService used by the HTTP handlers.
type Service interface {
	GetProfile(ctx context.Context, username string, viewerID *uuid.UUID) (*Profile, error)
	Follow(ctx context.Context, targetUsername string, actingUserID uuid.UUID) (*Profile, error)
	Unfollow(ctx context.Context, targetUsername string, actingUserID uuid.UUID) (*Profile, error)
}

// ProfileHandler handles HTTP requests for profiles.
type ProfileHandler struct {
	service Service
	logger  *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(service Service, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{service: service, logger: logger}
}

// RegisterRoutes registers the profile routes. router is expected to be mounted at /api/v1/profiles.
func (h *ProfileHandler) RegisterRoutes(router chi.Router, requireAuth, optionalAuth func(http.Handler) http.Handler) {
	router.With(optionalAuth).Get("/{username}", h.getProfile)
	router.With(requireAuth).Post("/{username}/follow", h.follow)
	router.With(requireAuth).Delete("/{username}/follow", h.unfollow)
}

// getProfile godoc
// @Summary Get profile
// @Tags Profiles
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} profiles.ProfileResponse
// @Failure 404 {object} apperror.ErrorResponse "Profile not found"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /api/v1/profiles/{username} [get]
func (h *ProfileHandler) getProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.GetProfile(r.Context(), chi.URLParam(r, "username"), auth.ViewerFromContext(r.Context()))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, ProfileResponse{Profile: *profile})
}

// follow godoc
// @Summary Follow user
// @Tags Profiles
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username to follow"
// @Success 201 {object} profiles.ProfileResponse
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 404 {object} apperror.ErrorResponse "Profile not found"
// @Failure 422 {object} apperror.ErrorResponse "Cannot follow yourself"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /api/v1/profiles/{username}/follow [post]
func (h *ProfileHandler) follow(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, r, h.logger, apperror.NewAuthError("authentication required", nil))
		return
	}

	profile, err := h.service.Follow(r.Context(), chi.URLParam(r, "username"), userID)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusCreated, ProfileResponse{Profile: *profile})
}

// unfollow godoc
// @Summary Unfollow user
// @Tags Profiles
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username to unfollow"
// @Success 202 {object} profiles.ProfileResponse
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 404 {object} apperror.ErrorResponse "Profile not found or not followed"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /api/v1/profiles/{username}/follow [delete]
func (h *ProfileHandler) unfollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, r, h.logger, apperror.NewAuthError("authentication required", nil))
		return
	}

	profile, err := h.service.Unfollow(r.Context(), chi.URLParam(r, "username"), userID)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusAccepted, ProfileResponse{Profile: *profile})
}
