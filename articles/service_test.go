package articles

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devactivity/dasar-actix-web/apperror"
	"github.com/devactivity/dasar-actix-web/db"
	"github.com/devactivity/dasar-actix-web/db/dbtest"
)

func ptr[T any](v T) *T { return &v }

type fixture struct {
	db  *db.DB
	svc *ArticleService
}

func newFixture(t *testing.T) *fixture {
	d := dbtest.Open(t)
	return &fixture{db: d, svc: NewArticleService(d)}
}

func (f *fixture) user(t *testing.T, prefix string) (Actor, uuid.UUID) {
	name := dbtest.Name(prefix)
	id := dbtest.CreateUser(t, f.db, name)
	return Actor{ID: id, Username: name}, id
}

func (f *fixture) article(t *testing.T, author Actor, title string, tags ...string) *ArticleView {
	view, err := f.svc.CreateArticle(context.Background(), author, NewArticle{
		Title: title, Description: "desc", Body: "body", TagList: tags,
	})
	require.NoError(t, err)
	return view
}

func (f *fixture) count(t *testing.T, sql string, args ...any) int {
	var n int
	require.NoError(t, f.db.Pool.QueryRow(context.Background(), sql, args...).Scan(&n))
	return n
}

func TestCreateArticle_Scenario(t *testing.T) {
	f := newFixture(t)
	alice, _ := f.user(t, "alice")

	view := f.article(t, alice, "My Topic", "rust", "web")

	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9_-]{22}-my-topic$`), view.Slug)
	assert.ElementsMatch(t, []string{"rust", "web"}, view.TagList)
	assert.Zero(t, view.FavoritesCount)
	assert.False(t, view.Favorited)
	assert.Equal(t, alice.Username, view.Author.Username)

	again, err := f.svc.GetArticleView(context.Background(), view.Slug, nil)
	require.NoError(t, err)
	assert.Equal(t, view.TagList, again.TagList)
	assert.Zero(t, again.FavoritesCount)
}

func TestCreateArticle_UnknownAuthor(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateArticle(context.Background(), Actor{ID: uuid.New(), Username: dbtest.Name("ghost")}, NewArticle{
		Title: "t", Description: "d", Body: "b", TagList: []string{"x"},
	})

	assert.True(t, apperror.IsNotFound(err))
}

func TestGetArticleView_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetArticleView(context.Background(), "no-such-slug-"+uuid.NewString(), nil)

	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, 404, apperror.FromError(err).StatusCode())
}

func TestUpdateArticle_TitleOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, _ := f.user(t, "alice")
	before := f.article(t, alice, "Old Title", "go")

	after, err := f.svc.UpdateArticle(ctx, before.Slug, alice, ArticleChanges{Title: ptr("X")})
	require.NoError(t, err)

	assert.Equal(t, "X", after.Title)
	assert.Equal(t, before.Description, after.Description)
	assert.Equal(t, before.Body, after.Body)
	assert.Equal(t, before.TagList, after.TagList)
	// Same id prefix, new title part.
	assert.Equal(t, before.Slug[:22]+"-x", after.Slug)

	_, err = f.svc.GetArticleView(ctx, before.Slug, nil)
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdateArticle_ReplacesTags(t *testing.T) {
	f := newFixture(t)
	alice, _ := f.user(t, "alice")
	before := f.article(t, alice, "Tags", "a", "b")

	after, err := f.svc.UpdateArticle(context.Background(), before.Slug, alice, ArticleChanges{TagList: ptr([]string{"c", "c", " b "})})
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "c"}, after.TagList)
	assert.Equal(t, before.Slug, after.Slug)
}

func TestNonAuthorCannotMutate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, _ := f.user(t, "alice")
	mallory, _ := f.user(t, "mal")
	view := f.article(t, alice, "Mine", "x")

	_, err := f.svc.UpdateArticle(ctx, view.Slug, mallory, ArticleChanges{Title: ptr("Stolen"), TagList: ptr([]string{"y"})})
	assert.True(t, apperror.IsForbidden(err))

	err = f.svc.DeleteArticle(ctx, view.Slug, mallory)
	assert.True(t, apperror.IsForbidden(err))

	unchanged, err := f.svc.GetArticleView(ctx, view.Slug, nil)
	require.NoError(t, err)
	assert.Equal(t, "Mine", unchanged.Title)
	assert.Equal(t, []string{"x"}, unchanged.TagList)
}

func TestWrites_RejectTokenForRenamedAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, aliceID := f.user(t, "alice")
	own := f.article(t, alice, "Mine", "x")

	// alice renames the account; a newcomer registers the freed name while the old
	// token, still carrying that name, has not expired.
	_, err := f.db.Pool.Exec(ctx, `UPDATE users SET username = $1 WHERE id = $2`, dbtest.Name("renamed"), aliceID)
	require.NoError(t, err)
	newcomer := Actor{ID: dbtest.CreateUser(t, f.db, alice.Username), Username: alice.Username}
	theirs := f.article(t, newcomer, "Theirs", "y")

	_, err = f.svc.UpdateArticle(ctx, theirs.Slug, alice, ArticleChanges{Title: ptr("Hijacked")})
	assert.True(t, apperror.IsAuthError(err))
	assert.True(t, apperror.IsAuthError(f.svc.DeleteArticle(ctx, theirs.Slug, alice)))
	_, err = f.svc.CreateArticle(ctx, alice, NewArticle{Title: "t", Description: "d", Body: "b", TagList: []string{"z"}})
	assert.True(t, apperror.IsAuthError(err))

	unchanged, err := f.svc.GetArticleView(ctx, theirs.Slug, nil)
	require.NoError(t, err)
	assert.Equal(t, "Theirs", unchanged.Title)

	// The stale token cannot touch alice's own article under the old name either.
	_, err = f.svc.UpdateArticle(ctx, own.Slug, alice, ArticleChanges{Title: ptr("x")})
	assert.True(t, apperror.IsAuthError(err))
}

func TestUpdateArticle_Missing(t *testing.T) {
	f := newFixture(t)
	alice, _ := f.user(t, "alice")

	_, err := f.svc.UpdateArticle(context.Background(), "missing-"+uuid.NewString(), alice, ArticleChanges{Title: ptr("x")})
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteArticle_RemovesDependents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, aliceID := f.user(t, "alice")
	view := f.article(t, alice, "Doomed", "x", "y")

	_, err := f.svc.Favorite(ctx, view.Slug, aliceID)
	require.NoError(t, err)
	_, err = f.db.Pool.Exec(ctx,
		`INSERT INTO comments (article_id, user_id, body) SELECT id, $2, 'hi' FROM articles WHERE slug = $1`,
		view.Slug, aliceID)
	require.NoError(t, err)

	var articleID uuid.UUID
	require.NoError(t, f.db.Pool.QueryRow(ctx, `SELECT id FROM articles WHERE slug = $1`, view.Slug).Scan(&articleID))

	require.NoError(t, f.svc.DeleteArticle(ctx, view.Slug, alice))

	assert.Zero(t, f.count(t, `SELECT count(*) FROM article_tags WHERE article_id = $1`, articleID))
	assert.Zero(t, f.count(t, `SELECT count(*) FROM favorite_articles WHERE article_id = $1`, articleID))
	assert.Zero(t, f.count(t, `SELECT count(*) FROM comments WHERE article_id = $1`, articleID))
	_, err = f.svc.GetArticleView(ctx, view.Slug, nil)
	assert.True(t, apperror.IsNotFound(err))
}

func TestFavorite_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, _ := f.user(t, "alice")
	_, bobID := f.user(t, "bob")
	view := f.article(t, alice, "Fav", "x")

	first, err := f.svc.Favorite(ctx, view.Slug, bobID)
	require.NoError(t, err)
	second, err := f.svc.Favorite(ctx, view.Slug, bobID)
	require.NoError(t, err)

	assert.True(t, first.Favorited)
	assert.Equal(t, int64(1), first.FavoritesCount)
	assert.Equal(t, int64(1), second.FavoritesCount)
	assert.Equal(t, 1, f.count(t, `SELECT count(*) FROM favorite_articles WHERE user_id = $1`, bobID))

	anonymous, err := f.svc.GetArticleView(ctx, view.Slug, nil)
	require.NoError(t, err)
	assert.False(t, anonymous.Favorited)
	assert.Equal(t, int64(1), anonymous.FavoritesCount)

	unfavorited, err := f.svc.Unfavorite(ctx, view.Slug, bobID)
	require.NoError(t, err)
	assert.False(t, unfavorited.Favorited)
	assert.Zero(t, unfavorited.FavoritesCount)

	_, err = f.svc.Unfavorite(ctx, view.Slug, bobID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestFavorite_MissingArticle(t *testing.T) {
	f := newFixture(t)
	_, bobID := f.user(t, "bob")

	_, err := f.svc.Favorite(context.Background(), "missing-"+uuid.NewString(), bobID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestAuthorFollowingFlag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, aliceID := f.user(t, "alice")
	_, bobID := f.user(t, "bob")
	view := f.article(t, alice, "Followed", "x")

	_, err := f.db.Pool.Exec(ctx, `INSERT INTO followers (user_id, follower_id) VALUES ($1, $2)`, aliceID, bobID)
	require.NoError(t, err)

	seen, err := f.svc.GetArticleView(ctx, view.Slug, &bobID)
	require.NoError(t, err)
	assert.True(t, seen.Author.Following)

	feed, err := f.svc.FeedArticles(ctx, bobID, Page{})
	require.NoError(t, err)
	require.Equal(t, 1, feed.ArticlesCount)
	assert.Equal(t, view.Slug, feed.Articles[0].Slug)
	assert.True(t, feed.Articles[0].Author.Following)
}

func TestReplaceTags_Concurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, _ := f.user(t, "alice")
	view := f.article(t, alice, "Race", "start")

	var articleID uuid.UUID
	require.NoError(t, f.db.Pool.QueryRow(ctx, `SELECT id FROM articles WHERE slug = $1`, view.Slug).Scan(&articleID))

	sets := [][]string{{"a", "b"}, {"c", "d", "e"}}
	var wg sync.WaitGroup
	for _, tags := range sets {
		tags := tags
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.ReplaceTags(ctx, articleID, tags)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	final, err := f.svc.GetArticleView(ctx, view.Slug, nil)
	require.NoError(t, err)
	assert.Contains(t, sets, final.TagList)
}

func TestReplaceTags_MissingArticle(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ReplaceTags(context.Background(), uuid.New(), []string{"x"})
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_ListArticles_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, _ := f.user(t, "alice")
	bob, bobID := f.user(t, "bob")
	tag := dbtest.Name("tag")

	first := f.article(t, alice, "First", tag)
	second := f.article(t, alice, "Second", tag, "other")
	f.article(t, bob, "Bobs", "other")

	byTag, err := f.svc.ListArticles(ctx, ListFilter{Tag: &tag}, nil)
	require.NoError(t, err)
	require.Equal(t, 2, byTag.ArticlesCount)
	require.Len(t, byTag.Articles, byTag.ArticlesCount)
	// Newest first.
	assert.Equal(t, second.Slug, byTag.Articles[0].Slug)
	assert.Equal(t, first.Slug, byTag.Articles[1].Slug)

	byAuthor, err := f.svc.ListArticles(ctx, ListFilter{Author: &bob.Username}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, byAuthor.ArticlesCount)

	_, err = f.svc.Favorite(ctx, first.Slug, bobID)
	require.NoError(t, err)
	byFavorite, err := f.svc.ListArticles(ctx, ListFilter{Favorited: &bob.Username}, &bobID)
	require.NoError(t, err)
	require.Equal(t, 1, byFavorite.ArticlesCount)
	assert.True(t, byFavorite.Articles[0].Favorited)

	paged, err := f.svc.ListArticles(ctx, ListFilter{Tag: &tag, Page: Page{Limit: 1, Offset: 1}}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, paged.ArticlesCount)
	assert.Equal(t, first.Slug, paged.Articles[0].Slug)

	// Filter values travel as parameters, never as SQL text.
	injected := "x' OR '1'='1"
	none, err := f.svc.ListArticles(ctx, ListFilter{Author: &injected}, nil)
	require.NoError(t, err)
	assert.Zero(t, none.ArticlesCount)
	assert.NotNil(t, none.Articles)
}

func TestService_ListTags(t *testing.T) {
	f := newFixture(t)
	alice, _ := f.user(t, "alice")
	tag := dbtest.Name("tag")
	f.article(t, alice, "Tagged", tag)

	tags, err := f.svc.ListTags(context.Background())
	require.NoError(t, err)
	assert.Contains(t, tags, tag)
	assert.IsNonDecreasing(t, tags)
}

func TestGetArticleListView_MissingArticleFailsWholeList(t *testing.T) {
	f := newFixture(t)
	alice, _ := f.user(t, "alice")
	first := f.article(t, alice, "One", "x")
	second := f.article(t, alice, "Two", "x")

	list, err := f.svc.GetArticleListView(context.Background(), []Article{
		{Slug: first.Slug},
		{Slug: "vanished-" + uuid.NewString()},
		{Slug: second.Slug},
	}, nil)

	require.Error(t, err)
	assert.Nil(t, list)
	// A listed article that vanished is a server-side failure, not the caller's 404.
	assert.False(t, apperror.IsNotFound(err))
	assert.Equal(t, 500, apperror.FromError(err).StatusCode())
}

func TestGetArticleListView_PreservesInputOrder(t *testing.T) {
	f := newFixture(t)
	f.svc.fanOut = 2
	alice, _ := f.user(t, "alice")

	var input []Article
	var want []string
	for i := 0; i < 10; i++ {
		view := f.article(t, alice, fmt.Sprintf("Article %d", i), "x")
		// Newest first, the way list queries hand them over.
		input = append([]Article{{Slug: view.Slug}}, input...)
		want = append([]string{view.Slug}, want...)
	}

	list, err := f.svc.GetArticleListView(context.Background(), input, nil)
	require.NoError(t, err)

	require.Equal(t, len(want), list.ArticlesCount)
	got := make([]string, 0, len(list.Articles))
	for _, v := range list.Articles {
		got = append(got, v.Slug)
	}
	assert.Equal(t, want, got)
}
