package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/devactivity/dasar-actix-web/config"
)

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Environment: config.EnvDevelopment,
		Database:    &config.PoolConfig{},
		Auth:        &config.AuthConfig{JWTSecret: "secret", AccessTokenDuration: time.Minute, RefreshTokenDuration: time.Hour},
		Server:      &config.ServerConfig{Host: "127.0.0.1", Port: "8080", RequestTimeout: 60 * time.Second},
	}
}

func TestBuildRouter_WithoutDatabase(t *testing.T) {
	router := buildRouter(testConfig(), zap.NewNop(), nil)

	var routes []string
	err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, method+" "+route)
		return nil
	})
	require.NoError(t, err)

	assert.Contains(t, routes, "GET /ping")
	assert.Contains(t, routes, "POST /api/v1/articles")
	assert.Contains(t, routes, "DELETE /api/v1/articles/{slug}/comments/{id}")
	assert.Contains(t, routes, "POST /api/v1/profiles/{username}/follow")
}

func TestNewHTTPServer_WriteTimeoutOutlastsRequestTimeout(t *testing.T) {
	cfg := testConfig().Server

	srv := newHTTPServer(cfg, http.NotFoundHandler())

	assert.Equal(t, "127.0.0.1:8080", srv.Addr)
	assert.Greater(t, srv.WriteTimeout, cfg.RequestTimeout)
}
