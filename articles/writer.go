package articles

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/devactivity/dasar-actix-web/db"
)

// CreateArticle inserts an article written by author together with its tags and
// returns the resulting view as seen by the author. The insert and the tags commit together.
func (s *ArticleService) CreateArticle(ctx context.Context, author Actor, in NewArticle) (*ArticleView, error) {
	var (
		authorID uuid.UUID
		slug     string
	)
	// Everything inside the closure runs in one transaction: if the tag insert fails, the
	// article row is rolled back with it.
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		authorID, err = resolveActor(ctx, tx, author)
		if err != nil {
			return err
		}

		id := s.newID()
		slug = MakeSlug(id, in.Title)
		_, err = tx.Exec(ctx,
			`INSERT INTO articles (id, author_id, slug, title, description, body)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			id, authorID, slug, in.Title, in.Description, in.Body,
		)
		if err != nil {
			return db.WrapError("failed to create article", err)
		}

		_, err = replaceTags(ctx, tx, id, in.TagList)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.GetArticleView(ctx, slug, &authorID)
}

// UpdateArticle applies changes to the article at slug on behalf of actor, who must be
// its author. A new title re-derives the slug from the same id, so the returned view may
// live at a different slug. A non-nil TagList replaces the tag set in the same transaction.
func (s *ArticleService) UpdateArticle(ctx context.Context, slug string, actor Actor, changes ArticleChanges) (*ArticleView, error) {
	var (
		userID  uuid.UUID
		newSlug string
	)
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		userID, err = resolveActor(ctx, tx, actor)
		if err != nil {
			return err
		}

		article, err := lockArticleForAuthor(ctx, tx, slug, userID)
		if err != nil {
			return err
		}

		// A nil pointer binds as SQL NULL, and COALESCE then keeps the stored value.
		var slugChange *string
		if changes.Title != nil {
			derived := MakeSlug(article.ID, *changes.Title)
			slugChange = &derived
		}

		err = tx.QueryRow(ctx,
			`UPDATE articles
			    SET slug = COALESCE($1, slug),
			        title = COALESCE($2, title),
			        description = COALESCE($3, description),
			        body = COALESCE($4, body),
			        updated_at = now()
			  WHERE id = $5
			RETURNING slug`,
			slugChange, changes.Title, changes.Description, changes.Body, article.ID,
		).Scan(&newSlug)
		if err != nil {
			return db.WrapError("failed to update article", err)
		}

		if changes.TagList != nil {
			if _, err := replaceTags(ctx, tx, article.ID, *changes.TagList); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Read the view after commit, so the response shows exactly what was stored.
	return s.GetArticleView(ctx, newSlug, &userID)
}

// DeleteArticle removes the article at slug with its tags, favorites and comments.
// Only the author may delete it.
func (s *ArticleService) DeleteArticle(ctx context.Context, slug string, actor Actor) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		userID, err := resolveActor(ctx, tx, actor)
		if err != nil {
			return err
		}

		article, err := lockArticleForAuthor(ctx, tx, slug, userID)
		if err != nil {
			return err
		}

		// Dependents first; the foreign keys would cascade, but the order keeps the
		// statement log readable and does not rely on the schema.
		for _, stmt := range []string{
			`DELETE FROM article_tags WHERE article_id = $1`,
			`DELETE FROM favorite_articles WHERE article_id = $1`,
			`DELETE FROM comments WHERE article_id = $1`,
			`DELETE FROM articles WHERE id = $1`,
		} {
			if _, err := tx.Exec(ctx, stmt, article.ID); err != nil {
				return db.WrapError("failed to delete article", err)
			}
		}
		return nil
	})
}
