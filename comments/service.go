// Package comments, as part of the comments module.
// This file, `service.go`, contains the business logic for comment-related operations.
package comments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/devactivity/dasar-actix-web/apperror"
	"github.com/devactivity/dasar-actix-web/articles"
	"github.com/devactivity/dasar-actix-web/db"
)

// CommentService defines the comment operations the handlers depend on.
// Handlers depend on this interface rather than the concrete implementation, so they can be
// tested with a fake.
type CommentService interface {
	ListComments(ctx context.Context, slug string, viewerID *uuid.UUID) ([]Comment, error)
	AddComment(ctx context.Context, slug string, userID uuid.UUID, params NewComment) (*Comment, error)
	DeleteComment(ctx context.Context, slug string, commentID int32, userID uuid.UUID) error
}

// commentServiceImpl is the database-backed implementation of CommentService.
type commentServiceImpl struct {
	db *db.DB
}

// NewCommentService creates a new CommentService.
func NewCommentService(database *db.DB) CommentService {
	return &commentServiceImpl{db: database}
}

// Comments can't be bigger than 64 kilobytes.
const maxCommentSize = 64 * 1024

// selectComments reads comments with their author. $1 is the article id, $2 the viewer id
// (or NULL for anonymous viewers, which makes `following` false).
const selectComments = `
SELECT c.id, c.created_at, c.updated_at, c.body, u.username, u.bio,
       ($2::uuid IS NOT NULL AND EXISTS (
           SELECT 1 FROM followers f WHERE f.user_id = c.user_id AND f.follower_id = $2)) AS following
  FROM comments c
  JOIN users u ON u.id = c.user_id
 WHERE c.article_id = $1`

func scanComment(row pgx.Row) (Comment, error) {
	var (
		c                Comment
		created, updated time.Time
	)
	err := row.Scan(&c.ID, &created, &updated, &c.Body, &c.Author.Username, &c.Author.Bio, &c.Author.Following)
	c.CreatedAt = articles.Timestamp(created)
	c.UpdatedAt = articles.Timestamp(updated)
	return c, err
}

// ListComments returns the comments of the article at slug, oldest first.
func (s *commentServiceImpl) ListComments(ctx context.Context, slug string, viewerID *uuid.UUID) ([]Comment, error) {
	var comments []Comment
	err := s.db.WithReadTx(ctx, func(tx pgx.Tx) error {
		articleID, err := articles.ArticleIDBySlug(ctx, tx, slug)
		if err != nil {
			return err
		}

		rows, err := tx.Query(ctx, selectComments+` ORDER BY c.created_at, c.id`, articleID, viewerID)
		if err != nil {
			return db.WrapError("failed to list comments", err)
		}
		comments, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (Comment, error) {
			return scanComment(row)
		})
		if err != nil {
			return db.WrapError("failed to list comments", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []Comment{}
	}
	return comments, nil
}

// AddComment stores a comment by userID on the article at slug and returns it.
func (s *commentServiceImpl) AddComment(ctx context.Context, slug string, userID uuid.UUID, params NewComment) (*Comment, error) {
	if len(params.Body) > maxCommentSize {
		details := apperror.FieldErrors{}
		details.Add("body", "length", fmt.Sprintf("must be at most %d bytes", maxCommentSize))
		return nil, apperror.NewValidationError(details)
	}

	var comment Comment
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		articleID, err := articles.ArticleIDBySlug(ctx, tx, slug)
		if err != nil {
			return err
		}

		var id int32
		err = tx.QueryRow(ctx,
			`INSERT INTO comments (article_id, user_id, body) VALUES ($1, $2, $3) RETURNING id`,
			articleID, userID, params.Body,
		).Scan(&id)
		if err != nil {
			return db.WrapError("failed to add comment", err)
		}

		// Read it back through the same query the list uses, so both render identically.
		comment, err = scanComment(tx.QueryRow(ctx, selectComments+` AND c.id = $3`, articleID, userID, id))
		if err != nil {
			return db.WrapError("failed to load comment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment deletes comment commentID of the article at slug. Only its author may delete it.
func (s *commentServiceImpl) DeleteComment(ctx context.Context, slug string, commentID int32, userID uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		articleID, err := articles.ArticleIDBySlug(ctx, tx, slug)
		if err != nil {
			return err
		}

		var authorID uuid.UUID
		err = tx.QueryRow(ctx,
			`SELECT user_id FROM comments WHERE id = $1 AND article_id = $2 FOR UPDATE`,
			commentID, articleID,
		).Scan(&authorID)
		if err != nil {
			if db.IsNoRows(err) {
				return apperror.NewNotFoundError("comment not found", nil)
			}
			return db.WrapError("failed to load comment", err)
		}
		if authorID != userID {
			return apperror.NewForbiddenError("only the author may delete this comment", nil)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM comments WHERE id = $1`, commentID); err != nil {
			return db.WrapError("failed to delete comment", err)
		}
		return nil
	})
}
