package articles

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/devactivity/dasar-actix-web/db"
)

// Each optional filter is a typed parameter that disables its predicate when NULL, so the
// statement text never changes with the filter combination.
const listArticlesQuery = `
SELECT ` + articleColumns + `
  FROM articles a
  JOIN users u ON u.id = a.author_id
 WHERE ($1::text IS NULL OR u.username = $1)
   AND ($2::text IS NULL OR EXISTS (
         SELECT 1 FROM article_tags t WHERE t.article_id = a.id AND t.tag_name = $2))
   AND ($3::text IS NULL OR EXISTS (
         SELECT 1 FROM favorite_articles f JOIN users fu ON fu.id = f.user_id
          WHERE f.article_id = a.id AND fu.username = $3))
 ORDER BY a.created_at DESC, a.id
 LIMIT $4 OFFSET $5`

const feedArticlesQuery = `
SELECT ` + articleColumns + `
  FROM articles a
  JOIN followers f ON f.user_id = a.author_id
 WHERE f.follower_id = $1
 ORDER BY a.created_at DESC, a.id
 LIMIT $2 OFFSET $3`

// ListArticles returns the newest articles matching filter as seen by viewerID.
func (s *ArticleService) ListArticles(ctx context.Context, filter ListFilter, viewerID *uuid.UUID) (*ArticleListView, error) {
	page := filter.Normalize()
	articles, err := s.queryArticles(ctx, listArticlesQuery,
		filter.Author, filter.Tag, filter.Favorited, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return s.GetArticleListView(ctx, articles, viewerID)
}

// FeedArticles returns the newest articles written by authors userID follows.
func (s *ArticleService) FeedArticles(ctx context.Context, userID uuid.UUID, page Page) (*ArticleListView, error) {
	page = page.Normalize()
	articles, err := s.queryArticles(ctx, feedArticlesQuery, userID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return s.GetArticleListView(ctx, articles, &userID)
}

func (s *ArticleService) queryArticles(ctx context.Context, sql string, args ...any) ([]Article, error) {
	var articles []Article
	err := s.db.WithConn(ctx, func(q db.Querier) error {
		rows, err := q.Query(ctx, sql, args...)
		if err != nil {
			return db.WrapError("failed to list articles", err)
		}
		articles, err = pgx.CollectRows(rows, pgx.RowToStructByPos[Article])
		if err != nil {
			return db.WrapError("failed to list articles", err)
		}
		return nil
	})
	return articles, err
}
