package articles

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/devactivity/dasar-actix-web/apperror"
	"github.com/devactivity/dasar-actix-web/auth"
	"github.com/devactivity/dasar-actix-web/validation"
)

type fakeService struct {
	created  []NewArticle
	actors   []Actor
	updated  []ArticleChanges
	filters  []ListFilter
	viewers  []*uuid.UUID
	pages    []Page
	deleted  []string
	getErr   error
	writeErr error
}

func (f *fakeService) view(slug string) *ArticleView {
	return &ArticleView{Slug: slug, TagList: []string{}, Author: AuthorView{Username: "alice"}}
}

func (f *fakeService) GetArticleView(_ context.Context, slug string, viewerID *uuid.UUID) (*ArticleView, error) {
	f.viewers = append(f.viewers, viewerID)
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.view(slug), nil
}

func (f *fakeService) ListArticles(_ context.Context, filter ListFilter, viewerID *uuid.UUID) (*ArticleListView, error) {
	f.filters = append(f.filters, filter)
	f.viewers = append(f.viewers, viewerID)
	return &ArticleListView{Articles: []ArticleView{*f.view("a")}, ArticlesCount: 1}, nil
}

func (f *fakeService) FeedArticles(_ context.Context, _ uuid.UUID, page Page) (*ArticleListView, error) {
	f.pages = append(f.pages, page)
	return &ArticleListView{Articles: []ArticleView{}, ArticlesCount: 0}, nil
}

func (f *fakeService) CreateArticle(_ context.Context, author Actor, in NewArticle) (*ArticleView, error) {
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	f.actors = append(f.actors, author)
	f.created = append(f.created, in)
	v := f.view("id-" + strings.ToLower(strings.ReplaceAll(in.Title, " ", "-")))
	v.Title = in.Title
	v.TagList = in.TagList
	return v, nil
}

func (f *fakeService) UpdateArticle(_ context.Context, slug string, _ Actor, changes ArticleChanges) (*ArticleView, error) {
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	f.updated = append(f.updated, changes)
	return f.view(slug), nil
}

func (f *fakeService) DeleteArticle(_ context.Context, slug string, _ Actor) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.deleted = append(f.deleted, slug)
	return nil
}

func (f *fakeService) Favorite(_ context.Context, slug string, _ uuid.UUID) (*ArticleView, error) {
	v := f.view(slug)
	v.Favorited = true
	v.FavoritesCount = 1
	return v, nil
}

func (f *fakeService) Unfavorite(_ context.Context, slug string, _ uuid.UUID) (*ArticleView, error) {
	return f.view(slug), nil
}

func (f *fakeService) ListTags(context.Context) ([]string, error) {
	return []string{"rust", "web"}, nil
}

// fakeAuth authenticates every request carrying "Authorization: Token <uuid>".
func fakeAuth(required bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Token ")
			if !ok {
				if required {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			claims := &auth.CustomClaims{UserID: uuid.MustParse(raw), Username: "alice"}
			next.ServeHTTP(w, r.WithContext(auth.NewContextWithClaims(r.Context(), claims)))
		})
	}
}

func newTestRouter(svc Service) http.Handler {
	r := chi.NewRouter()
	NewArticleHandler(svc, validation.New(), zap.NewNop()).RegisterRoutes(r, fakeAuth(true), fakeAuth(false))
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string, user *uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set("Authorization", "Token "+user.String())
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateArticle_Created(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)
	user := uuid.New()

	rec := do(t, router, http.MethodPost, "/articles",
		`{"article":{"title":"My Topic","description":"d","body":"b","tagList":["rust","web"]}}`, &user)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp ArticleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasSuffix(resp.Article.Slug, "-my-topic"))
	assert.ElementsMatch(t, []string{"rust", "web"}, resp.Article.TagList)
	assert.Zero(t, resp.Article.FavoritesCount)
	// The writer receives both the id and the username carried by the token.
	assert.Equal(t, []Actor{{ID: user, Username: "alice"}}, svc.actors)
}

func TestCreateArticle_RequiresAuth(t *testing.T) {
	svc := &fakeService{}
	rec := do(t, newTestRouter(svc), http.MethodPost, "/articles",
		`{"article":{"title":"t","description":"d","body":"b","tagList":["x"]}}`, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, svc.created)
}

func TestCreateArticle_Invalid(t *testing.T) {
	svc := &fakeService{}
	user := uuid.New()

	rec := do(t, newTestRouter(svc), http.MethodPost, "/articles",
		`{"article":{"title":"  ","description":"d","body":"b","tagList":[]}}`, &user)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title"`)
	assert.Contains(t, rec.Body.String(), `"tagList"`)
	assert.Empty(t, svc.created)
}

func TestUpdateArticle_PartialAndForbidden(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)
	user := uuid.New()

	rec := do(t, router, http.MethodPut, "/articles/abc-old", `{"article":{"title":"X"}}`, &user)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.updated, 1)
	assert.Equal(t, "X", *svc.updated[0].Title)
	assert.Nil(t, svc.updated[0].Body)
	assert.Nil(t, svc.updated[0].TagList)

	svc.writeErr = apperror.NewForbiddenError("only the author may modify this article", nil)
	rec = do(t, router, http.MethodPut, "/articles/abc-old", `{"article":{"title":"X"}}`, &user)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, router, http.MethodDelete, "/articles/abc-old", "", &user)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, svc.deleted)
}

func TestGetArticle_NotFound(t *testing.T) {
	svc := &fakeService{getErr: apperror.NewNotFoundError("article not found", nil)}

	rec := do(t, newTestRouter(svc), http.MethodGet, "/articles/missing", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"article not found"}`, rec.Body.String())
}

func TestGetArticle_ViewerIsOptional(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)
	user := uuid.New()

	require.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/articles/s", "", nil).Code)
	require.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/articles/s", "", &user).Code)

	require.Len(t, svc.viewers, 2)
	assert.Nil(t, svc.viewers[0])
	require.NotNil(t, svc.viewers[1])
	assert.Equal(t, user, *svc.viewers[1])
}

func TestListArticlesHandler_Filters(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)

	rec := do(t, router, http.MethodGet, "/articles?tag=rust&author=alice&limit=5&offset=10", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `1`, string(mustField(t, rec.Body.Bytes(), "articlesCount")))

	require.Len(t, svc.filters, 1)
	f := svc.filters[0]
	assert.Equal(t, "rust", *f.Tag)
	assert.Equal(t, "alice", *f.Author)
	assert.Nil(t, f.Favorited)
	assert.Equal(t, Page{Limit: 5, Offset: 10}, f.Page)

	rec = do(t, router, http.MethodGet, "/articles?limit=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeed_RoutedBeforeSlug(t *testing.T) {
	svc := &fakeService{}
	user := uuid.New()

	rec := do(t, newTestRouter(svc), http.MethodGet, "/articles/feed", "", &user)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []Page{{Limit: DefaultLimit}}, svc.pages)
	assert.Empty(t, svc.viewers)
}

func TestFavoriteStatuses(t *testing.T) {
	router := newTestRouter(&fakeService{})
	user := uuid.New()

	assert.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/articles/s/favorite", "", &user).Code)
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodDelete, "/articles/s/favorite", "", &user).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, router, http.MethodPost, "/articles/s/favorite", "", nil).Code)
}

func TestListTagsHandler(t *testing.T) {
	rec := do(t, newTestRouter(&fakeService{}), http.MethodGet, "/tags", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tags":["rust","web"]}`, rec.Body.String())
}

func mustField(t *testing.T, body []byte, key string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &m))
	return m[key]
}
