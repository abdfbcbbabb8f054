package profiles

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/devactivity/dasar-actix-web/apperror"
	"github.com/devactivity/dasar-actix-web/auth"
)

type fakeService struct {
	following map[string]bool
}

func (f *fakeService) GetProfile(_ context.Context, username string, viewerID *uuid.UUID) (*Profile, error) {
	if username == "ghost" {
		return nil, apperror.NewNotFoundError("profile not found", nil)
	}
	return &Profile{Username: username, IsFollowing: viewerID != nil && f.following[username]}, nil
}

func (f *fakeService) Follow(_ context.Context, username string, _ uuid.UUID) (*Profile, error) {
	if username == "alice" {
		return nil, apperror.NewUnprocessableError("You cannot follow yourself", nil)
	}
	f.following[username] = true
	return &Profile{Username: username, IsFollowing: true}, nil
}

func (f *fakeService) Unfollow(_ context.Context, username string, _ uuid.UUID) (*Profile, error) {
	if !f.following[username] {
		return nil, apperror.NewNotFoundError("you are not following this user", nil)
	}
	delete(f.following, username)
	return &Profile{Username: username}, nil
}

// asAlice authenticates every request as alice.
func asAlice(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := &auth.CustomClaims{UserID: uuid.New(), Username: "alice"}
		next.ServeHTTP(w, r.WithContext(auth.NewContextWithClaims(r.Context(), claims)))
	})
}

func anonymous(next http.Handler) http.Handler { return next }

func newRouter(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Route("/profiles", func(r chi.Router) {
		NewProfileHandler(svc, zap.NewNop()).RegisterRoutes(r, asAlice, anonymous)
	})
	return r
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestProfileRoutes(t *testing.T) {
	router := newRouter(&fakeService{following: map[string]bool{}})

	rec := serve(router, http.MethodGet, "/profiles/bob")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"profile":{"username":"bob","bio":null,"isFollowing":false}}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/profiles/ghost").Code)

	rec = serve(router, http.MethodPost, "/profiles/bob/follow")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isFollowing":true`)

	rec = serve(router, http.MethodDelete, "/profiles/bob/follow")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isFollowing":false`)

	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodDelete, "/profiles/bob/follow").Code)
}

func TestFollowSelfIsUnprocessable(t *testing.T) {
	router := newRouter(&fakeService{following: map[string]bool{}})

	rec := serve(router, http.MethodPost, "/profiles/alice/follow")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "You cannot follow yourself")
}
