package server

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/devactivity/dasar-actix-web/respond"
)

// Pinger checks that the database is reachable. *db.DB implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// handlePing godoc
// @Summary Health check
// @Description Answers pong once a database connection could be acquired and pinged.
// @Tags Health
// @Produce json
// @Success 200 {object} respond.Message
// @Failure 500 {object} apperror.ErrorResponse "Database unreachable"
// @Router /ping [get]
func handlePing(database Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := database.Ping(r.Context()); err != nil {
			respond.Error(w, r, logger, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, respond.Message{Message: "pong"})
	}
}
