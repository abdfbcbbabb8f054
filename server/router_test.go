package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/devactivity/dasar-actix-web/apperror"
	"github.com/devactivity/dasar-actix-web/articles"
	"github.com/devactivity/dasar-actix-web/auth"
	"github.com/devactivity/dasar-actix-web/comments"
	"github.com/devactivity/dasar-actix-web/profiles"
	"github.com/devactivity/dasar-actix-web/users"
	"github.com/devactivity/dasar-actix-web/validation"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type fakeTokens struct{}

func (fakeTokens) ValidateAccessToken(token string) (*auth.CustomClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &auth.CustomClaims{UserID: uuid.New(), Username: "alice"}, nil
}

// newTestRouter wires handlers whose services are never reached by these tests.
func newTestRouter(pinger Pinger, logger *zap.Logger) http.Handler {
	v := validation.New()
	return NewRouter(Dependencies{
		Logger:   logger,
		Database: pinger,
		Tokens:   fakeTokens{},

		Auth:     auth.NewHandlers(nil, v, logger),
		Users:    users.NewUserHandlers(nil, v, logger),
		Profiles: profiles.NewProfileHandler(nil, logger),
		Articles: articles.NewArticleHandler(nil, v, logger),
		Comments: comments.NewCommentHandler(nil, v, logger),
	})
}

func get(h http.Handler, target, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	rec := get(newTestRouter(fakePinger{}, zap.NewNop()), "/ping", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rec.Body.String())

	down := fakePinger{err: apperror.NewDatabaseError("database ping failed", errors.New("connection refused"))}
	rec = get(newTestRouter(down, zap.NewNop()), "/ping", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(fakePinger{}, zap.NewNop())

	for _, target := range []string{"/api/v1/users/me", "/api/v1/articles/feed"} {
		rec := get(router, target, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
}

func TestOptionalRoutesRejectInvalidToken(t *testing.T) {
	router := newTestRouter(fakePinger{}, zap.NewNop())

	rec := get(router, "/api/v1/articles/some-slug", "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get(router, "/api/v1/profiles/alice", "Token nope")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	rec := get(newTestRouter(fakePinger{}, zap.NewNop()), "/nope", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"route not found"}`, rec.Body.String())
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	router := newTestRouter(fakePinger{}, zap.New(core))

	get(router, "/ping", "")

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/ping", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
	assert.NotEmpty(t, fields["request_id"])
}

func TestRecoverer(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	logger := zap.New(core)

	h := Recoverer(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestRecoverer_AbortHandler(t *testing.T) {
	h := Recoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
