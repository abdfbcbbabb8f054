package articles

import (
	"context"

	"github.com/google/uuid"

	"github.com/devactivity/dasar-actix-web/apperror"
	"github.com/devactivity/dasar-actix-web/db"
)

// Favorite marks the article at slug as a favorite of userID and returns the refreshed view.
// Favoriting twice is a no-op.
func (s *ArticleService) Favorite(ctx context.Context, slug string, userID uuid.UUID) (*ArticleView, error) {
	err := s.db.WithConn(ctx, func(q db.Querier) error {
		articleID, err := ArticleIDBySlug(ctx, q, slug)
		if err != nil {
			return err
		}
		_, err = q.Exec(ctx,
			`INSERT INTO favorite_articles (user_id, article_id) VALUES ($1, $2)
			 ON CONFLICT (user_id, article_id) DO NOTHING`,
			userID, articleID,
		)
		if err != nil {
			return db.WrapError("failed to favorite article", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetArticleView(ctx, slug, &userID)
}

// Unfavorite removes the favorite edge between userID and the article at slug.
// It returns NotFound when the article does not exist or was not a favorite.
func (s *ArticleService) Unfavorite(ctx context.Context, slug string, userID uuid.UUID) (*ArticleView, error) {
	err := s.db.WithConn(ctx, func(q db.Querier) error {
		articleID, err := ArticleIDBySlug(ctx, q, slug)
		if err != nil {
			return err
		}
		tag, err := q.Exec(ctx, `DELETE FROM favorite_articles WHERE user_id = $1 AND article_id = $2`, userID, articleID)
		if err != nil {
			return db.WrapError("failed to unfavorite article", err)
		}
		if tag.RowsAffected() == 0 {
			return apperror.NewNotFoundError("article is not in your favorites", nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetArticleView(ctx, slug, &userID)
}
