package articles

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	// `errgroup` runs a group of goroutines, collects the first error and cancels the
	// shared context for the rest.
	"golang.org/x/sync/errgroup"

	"github.com/devactivity/dasar-actix-web/apperror"
	"github.com/devactivity/dasar-actix-web/db"
)

// GetArticleView assembles the view of the article identified by slug.
//
// All four reads run in one REPEATABLE READ transaction, so the tag list, the favorite count
// and the viewer flags describe the same snapshot of the article. viewerID may be nil for
// anonymous requests, in which case both flags are false.
func (s *ArticleService) GetArticleView(ctx context.Context, slug string, viewerID *uuid.UUID) (*ArticleView, error) {
	var view *ArticleView
	err := s.db.WithReadTx(ctx, func(tx pgx.Tx) error {
		var err error
		view, err = loadArticleView(ctx, tx, slug, viewerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func loadArticleView(ctx context.Context, q db.Querier, slug string, viewerID *uuid.UUID) (*ArticleView, error) {
	var (
		article Article
		author  AuthorView
	)
	err := q.QueryRow(ctx,
		`SELECT `+articleColumns+`, u.username, u.bio
		   FROM articles a
		   JOIN users u ON u.id = a.author_id
		  WHERE a.slug = $1`, slug,
	).Scan(
		&article.ID, &article.AuthorID, &article.Slug, &article.Title, &article.Description,
		&article.Body, &article.CreatedAt, &article.UpdatedAt, &author.Username, &author.Bio,
	)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperror.NewNotFoundError("article not found", nil)
		}
		return nil, db.WrapError("failed to load article", err)
	}

	// `pgx.CollectRows` drains the rows and closes them; `pgx.RowTo[string]` scans the single
	// column of each row.
	rows, err := q.Query(ctx, `SELECT tag_name FROM article_tags WHERE article_id = $1 ORDER BY tag_name`, article.ID)
	if err != nil {
		return nil, db.WrapError("failed to load article tags", err)
	}
	tags, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, db.WrapError("failed to load article tags", err)
	}
	if tags == nil {
		tags = []string{}
	}

	var favoritesCount int64
	err = q.QueryRow(ctx, `SELECT count(*) FROM favorite_articles WHERE article_id = $1`, article.ID).Scan(&favoritesCount)
	if err != nil {
		return nil, db.WrapError("failed to count favorites", err)
	}

	// Anonymous viewers neither favorite nor follow anything; skip the query for them.
	var favorited bool
	if viewerID != nil {
		err = q.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM favorite_articles WHERE article_id = $1 AND user_id = $2),
			        EXISTS (SELECT 1 FROM followers WHERE user_id = $3 AND follower_id = $2)`,
			article.ID, *viewerID, article.AuthorID,
		).Scan(&favorited, &author.Following)
		if err != nil {
			return nil, db.WrapError("failed to load viewer flags", err)
		}
	}

	return &ArticleView{
		Slug:           article.Slug,
		Title:          article.Title,
		Description:    article.Description,
		Body:           article.Body,
		TagList:        tags,
		CreatedAt:      Timestamp(article.CreatedAt),
		UpdatedAt:      Timestamp(article.UpdatedAt),
		Favorited:      favorited,
		FavoritesCount: favoritesCount,
		Author:         author,
	}, nil
}

// GetArticleListView assembles the views of articles concurrently and returns them in input
// order. If any view fails, the whole list fails and the remaining work is cancelled.
func (s *ArticleService) GetArticleListView(ctx context.Context, articles []Article, viewerID *uuid.UUID) (*ArticleListView, error) {
	// Each goroutine writes only to its own index, so the slice needs no lock and the
	// output order matches the input order.
	views := make([]ArticleView, len(articles))

	// `SetLimit` caps how many goroutines run at once; g.Go blocks until a slot is free.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanOut)
	for i, article := range articles {
		i, article := i, article
		g.Go(func() error {
			view, err := s.GetArticleView(gctx, article.Slug, viewerID)
			if err != nil {
				// The article was listed a moment ago; losing it now is not the caller's 404.
				if apperror.IsNotFound(err) {
					return apperror.NewInternalError("article disappeared while building the list", err)
				}
				return err
			}
			views[i] = *view
			return nil
		})
	}
	// Wait returns the first error. Partial results are dropped.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &ArticleListView{Articles: views, ArticlesCount: len(views)}, nil
}
