// Package server assembles the HTTP router: global middleware, the health check, Swagger UI
// and every API route of the application.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/devactivity/dasar-actix-web/apperror"
	"github.com/devactivity/dasar-actix-web/articles"
	"github.com/devactivity/dasar-actix-web/auth"
	"github.com/devactivity/dasar-actix-web/comments"
	"github.com/devactivity/dasar-actix-web/profiles"
	"github.com/devactivity/dasar-actix-web/respond"
	"github.com/devactivity/dasar-actix-web/users"
)

// Dependencies are the already constructed collaborators the router dispatches to.
type Dependencies struct {
	Logger         *zap.Logger
	Database       Pinger
	Tokens         auth.TokenValidator
	RequestTimeout time.Duration

	Auth     *auth.Handlers
	Users    *users.UserHandlers
	Profiles *profiles.ProfileHandler
	Articles *articles.ArticleHandler
	Comments *comments.CommentHandler
}

// NewRouter creates the application router.
func NewRouter(deps Dependencies) chi.Router {
	r := chi.NewRouter()

	// Chi requires all middleware to be registered before any routes.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(deps.Logger))
	r.Use(Recoverer(deps.Logger))
	if deps.RequestTimeout > 0 {
		r.Use(middleware.Timeout(deps.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check. It lives outside /api/v1 and needs no token.
	r.Get("/ping", handlePing(deps.Database, deps.Logger))

	// Swagger UI. The document itself is registered by the docs package imported in main.
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// requireAuth rejects requests without a valid access token; optionalAuth lets anonymous
	// requests through but still rejects a token that is present and invalid.
	requireAuth := auth.JWTMiddleware(deps.Tokens, deps.Logger)
	optionalAuth := auth.OptionalJWTMiddleware(deps.Tokens, deps.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", deps.Auth.HandleRegister())
			r.Post("/login", deps.Auth.HandleLogin())
			r.Post("/refresh", deps.Auth.HandleRefreshToken())

			// `r.Group` shares the /users prefix but adds its own middleware stack.
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", deps.Users.HandleGetCurrentUser())
				r.Put("/me", deps.Users.HandleUpdateCurrentUser())
				r.Delete("/me", deps.Users.HandleDeleteCurrentUser())
			})
		})

		r.Route("/profiles", func(r chi.Router) {
			deps.Profiles.RegisterRoutes(r, requireAuth, optionalAuth)
		})

		// Articles and their comments share the /articles/{slug} prefix, so both register
		// full patterns on the /api/v1 router instead of mounting sub-routers.
		deps.Articles.RegisterRoutes(r, requireAuth, optionalAuth)
		deps.Comments.RegisterRoutes(r, requireAuth, optionalAuth)
	})

	// Unknown routes get the same JSON error body as every other failure.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, deps.Logger, apperror.NewNotFoundError("route not found", nil))
	})

	return r
}
