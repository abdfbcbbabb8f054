// Package respond holds the HTTP helpers shared by every handler: decoding JSON bodies,
// writing JSON responses with go-chi/render, and turning errors into apperror bodies.
package respond

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/devactivity/dasar-actix-web/apperror"
)

// Message is the body of responses that carry nothing but a human readable message.
type Message struct {
	Message string `json:"message" example:"Record deleted successfully"`
}

// JSON writes v as JSON with the given status code.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// Decode reads the JSON request body into dst. Malformed bodies become a BadRequest error.
func Decode(r *http.Request, dst any) error {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		return apperror.NewBadRequestError("invalid request body: "+err.Error(), err)
	}
	return nil
}

// Error writes err as a JSON error body. Anything that is not an *apperror.AppError is treated
// as an internal error. Server side failures are logged with their cause and answered with a
// redacted body.
func Error(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	appErr := apperror.FromError(err)

	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Int("status", appErr.StatusCode()),
		zap.Error(appErr),
	}
	if appErr.IsServerError() {
		logger.Error("request failed", fields...)
	} else {
		logger.Debug("request rejected", fields...)
	}

	JSON(w, r, appErr.StatusCode(), appErr.ToResponse())
}
