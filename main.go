// This is the main entry point of the blogging API.
// It's responsible for initializing configuration, logging and the database pool,
// wiring services into handlers, building the HTTP router and starting the HTTP server.
// It also handles graceful shutdown.
//
// @title Dasar Actix Web API
// @version 1.0
// @description Blogging API: users, profiles, articles, favorites, tags and comments.
// @contact.name API Support
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/docgen"
	// `godotenv` loads environment variables from a .env file, useful for development.
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/devactivity/dasar-actix-web/articles"
	"github.com/devactivity/dasar-actix-web/auth"
	"github.com/devactivity/dasar-actix-web/comments"
	"github.com/devactivity/dasar-actix-web/config"
	"github.com/devactivity/dasar-actix-web/db"
	// Generated Swagger docs, imported for the side effect of registering the OpenAPI document.
	_ "github.com/devactivity/dasar-actix-web/docs"
	"github.com/devactivity/dasar-actix-web/profiles"
	"github.com/devactivity/dasar-actix-web/server"
	"github.com/devactivity/dasar-actix-web/users"
	"github.com/devactivity/dasar-actix-web/validation"
)

const shutdownTimeout = 30 * time.Second

func main() {
	routes := flag.Bool("routes", false, "Print the router documentation as Markdown and exit")
	flag.Parse()

	// Load .env file. In production, variables are usually set directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: error loading .env file: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger, *routes); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
}

func newLogger(cfg *config.AppConfig) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// writeTimeoutMargin is added on top of the request timeout so that middleware.Timeout
// answers a slow request with 504 before the server's write deadline closes the connection.
const writeTimeoutMargin = 5 * time.Second

func run(cfg *config.AppConfig, logger *zap.Logger, printRoutes bool) error {
	// Passing -routes prints the route table and exits. The router only needs the
	// services' shape here, not a live pool, so no database connection is opened.
	if printRoutes {
		fmt.Println(docgen.MarkdownRoutesDoc(buildRouter(cfg, logger, nil), docgen.MarkdownOpts{
			ProjectPath: "github.com/devactivity/dasar-actix-web",
			Intro:       "Routes of the blogging API.",
		}))
		return nil
	}

	// Open the connection pool. Every service shares it; pgxpool hands out connections
	// per query or transaction and returns them when done.
	database, err := db.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	// Apply the embedded SQL migrations before serving, so handlers never see an old schema.
	if cfg.Database.RunMigrations {
		if err := db.RunMigrations(cfg.Database.DSN(), logger); err != nil {
			return err
		}
	}

	router := buildRouter(cfg, logger, database)

	srv := newHTTPServer(cfg.Server, router)

	// Start the server in a goroutine so that it doesn't block the signal handling below.
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.Environment),
			zap.Int("db_pool_size", cfg.Database.MaxSize),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for an interrupt signal (Ctrl+C) or a termination signal from the orchestrator.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	case sig := <-quit:
		logger.Info("server shutting down", zap.Stringer("signal", sig))
	}

	// Give in-flight requests up to shutdownTimeout to finish.
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("server stopped gracefully")
	return nil
}

// newHTTPServer configures the HTTP server. The write deadline must outlast the per-request
// timeout, otherwise the connection is cut before the timeout middleware can reply.
func newHTTPServer(cfg *config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + writeTimeoutMargin,
		IdleTimeout:  60 * time.Second,
	}
}

// buildRouter wires services into handlers and handlers into the router.
// database may be nil when the router is only built to print its routes.
func buildRouter(cfg *config.AppConfig, logger *zap.Logger, database *db.DB) chi.Router {
	// Services encapsulate business logic; their dependencies are injected here.
	validator := validation.New()

	authService := auth.NewAuthService(database, *cfg.Auth)
	userService := users.NewUserService(database, authService)
	profileService := profiles.NewProfileService(database)
	articleService := articles.NewArticleService(database)
	commentService := comments.NewCommentService(database)

	// Handlers translate HTTP to service calls. The router owns middleware and mounting.
	return server.NewRouter(server.Dependencies{
		Logger:         logger,
		Database:       database,
		Tokens:         authService,
		RequestTimeout: cfg.Server.RequestTimeout,

		Auth:     auth.NewHandlers(authService, validator, logger),
		Users:    users.NewUserHandlers(userService, validator, logger),
		Profiles: profiles.NewProfileHandler(profileService, logger),
		Articles: articles.NewArticleHandler(articleService, validator, logger),
		Comments: comments.NewCommentHandler(commentService, validator, logger),
	})
}
