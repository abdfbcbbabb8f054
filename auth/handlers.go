// Package auth, as part of the authentication module.
// This file, `handlers.go`, is responsible for handling HTTP requests related to authentication.
package auth

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/devactivity/dasar-actix-web/respond"
	"github.com/devactivity/dasar-actix-web/validation"
)

// Service is the part of AuthService used by the HTTP handlers.
type Service interface {
	Register(ctx context.Context, req RegisterUser) (*AuthenticatedUser, error)
	Login(ctx context.Context, req LoginUser) (*AuthenticatedUser, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error)
}

// Handlers wraps the auth Service to provide HTTP handlers
type Handlers struct {
	service   Service
	validator *validation.Validator
	logger    *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(service Service, validator *validation.Validator, logger *zap.Logger) *Handlers {
	return &Handlers{service: service, validator: validator, logger: logger}
}

// HandleRegister godoc
// @Summary User Registration
// @Description Registers a new user and returns it with a fresh token pair.
// @Tags Users
// @Accept json
// @Produce json
// @Param registerBody body auth.RegisterRequest true "User registration details"
// @Success 201 {object} auth.UserResponse "User created successfully"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Invalid input or missing fields"
// @Failure 422 {object} apperror.ErrorResponse "Username or email already taken"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /api/v1/users/register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, h.logger, err)
			return
		}
		if err := h.validator.Validate(req.User); err != nil {
			respond.Error(w, r, h.logger, err)
			return
		}

		user, err := h.service.Register(r.Context(), req.User)
		if err != nil {
			respond.Error(w, r, h.logger, err)
			return
		}

		h.logger.Info("user registered", zap.String("username", user.Username))
		respond.JSON(w, r, http.StatusCreated, UserResponse{User: *user})
	}
}

// HandleLogin godoc
// @Summary User Login
// @Description Logs in an existing user by email and password.
// @Tags Users
// @Accept json
// @Produce json
// @Param loginBody body auth.LoginRequest true "User login credentials"
// @Success 200 {object} auth.UserResponse "Login successful, tokens provided"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Invalid input or missing fields"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized - Invalid credentials"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /api/v1/users/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, h.logger, err)
			return
		}
		if err := h.validator.Validate(req.User); err != nil {
			respond.Error(w, r, h.logger, err)
			return
		}

		user, err := h.service.Login(r.Context(), req.User)
		if err != nil {
			respond.Error(w, r, h.logger, err)
			return
		}

		respond.JSON(w, r, http.StatusOK, UserResponse{User: *user})
	}
}

// HandleRefreshToken godoc
// @Summary Refresh Access Token
// @Description Provides a new access token using a valid refresh token.
// @Tags Users
// @Accept json
// @Produce json
// @Param refreshBody body auth.RefreshTokenRequest true "Refresh token details"
// @Success 200 {object} auth.TokenResponse "Tokens refreshed successfully"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Invalid input or missing refresh token"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized - Invalid or expired refresh token"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /api/v1/users/refresh [post]
func (h *Handlers) HandleRefreshToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RefreshTokenRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, h.logger, err)
			return
		}
		if err := h.validator.Validate(req); err != nil {
			respond.Error(w, r, h.logger, err)
			return
		}

		resp, err := h.service.RefreshToken(r.Context(), req.RefreshToken)
		if err != nil {
			respond.Error(w, r, h.logger, err)
			return
		}

		respond.JSON(w, r, http.StatusOK, resp)
	}
}
