// Package users encapsulates all functionality related to the signed-in user's account.
// This file, `handlers.go`, is responsible for handling HTTP requests related to users.
package users

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/devactivity/dasar-actix-web/apperror"
	"github.com/devactivity/dasar-actix-web/auth"
	"github.com/devactivity/dasar-actix-web/respond"
	"github.com/devactivity/dasar-actix-web/validation"
)

// Service is the part of UserService used by the HTTP handlers.
type Service interface {
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*CurrentUser, error)
	UpdateCurrentUser(ctx context.Context, userID uuid.UUID, req UpdateUser) (*auth.AuthenticatedUser, error)
	DeleteCurrentUser(ctx context.Context, userID uuid.UUID) error
}

// UserHandlers provides HTTP handlers for account management.
type UserHandlers struct {
	service   Service
	validator *validation.Validator
	logger    *zap.Logger
}

// NewUserHandlers creates new UserHandlers.
func NewUserHandlers(service Service, validator *validation.Validator, logger *zap.Logger) *UserHandlers {
	return &UserHandlers{service: service, validator: validator, logger: logger}
}

// HandleGetCurrentUser godoc
// @Summary Get current user
// @Description Retrieves the account of the currently authenticated user.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} users.CurrentUserResponse "Successfully retrieved user"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} apperror.ErrorResponse "Not Found - User not found"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /api/v1/users/me [get]
func (h *UserHandlers) HandleGetCurrentUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			respond.Error(w, r, h.logger, apperror.NewAuthError("authentication required", nil))
			return
		}

		user, err := h.service.GetCurrentUser(r.Context(), userID)
		if err != nil {
			respond.Error(w, r, h.logger, err)
			return
		}

		respond.JSON(w, r, http.StatusOK, CurrentUserResponse{User: *user})
	}
}

// HandleUpdateCurrentUser godoc
// @Summary Update current user
// @Description Updates username, email, password or bio of the authenticated user and returns a fresh token.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body users.UpdateUserRequest true "Fields to update"
// @Success 200 {object} auth.UserResponse "Successfully updated user"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Invalid input data"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} apperror.ErrorResponse "Not Found - User not found"
// @Failure 422 {object} apperror.ErrorResponse "Username or email already taken"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /api/v1/users/me [put]
func (h *UserHandlers) HandleUpdateCurrentUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			respond.Error(w, r, h.logger, apperror.NewAuthError("authentication required", nil))
			return
		}

		var req UpdateUserRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, h.logger, err)
			return
		}
		if err := h.validator.Validate(req.User); err != nil {
			respond.Error(w, r, h.logger, err)
			return
		}

		user, err := h.service.UpdateCurrentUser(r.Context(), userID, req.User)
		if err != nil {
			respond.Error(w, r, h.logger, err)
			return
		}

		respond.JSON(w, r, http.StatusOK, auth.UserResponse{User: *user})
	}
}

// HandleDeleteCurrentUser godoc
// @Summary Delete current user
// @Description Deletes the authenticated user together with their articles, comments, favorites and follows.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} respond.Message "User deleted"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} apperror.ErrorResponse "Not Found - User not found"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /api/v1/users/me [delete]
func (h *UserHandlers) HandleDeleteCurrentUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			respond.Error(w, r, h.logger, apperror.NewAuthError("authentication required", nil))
			return
		}

		if err := h.service.DeleteCurrentUser(r.Context(), userID); err != nil {
			respond.Error(w, r, h.logger, err)
			return
		}

		h.logger.Info("user deleted", zap.Stringer("user_id", userID))
		respond.JSON(w, r, http.StatusOK, respond.Message{Message: "User deleted successfully"})
	}
}
