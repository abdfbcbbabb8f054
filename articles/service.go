package articles

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/devactivity/dasar-actix-web/apperror"
	"github.com/devactivity/dasar-actix-web/auth"
	"github.com/devactivity/dasar-actix-web/db"
)

// defaultFanOut bounds concurrent view assembly when the pool size is unknown.
const defaultFanOut = 4

// articleColumns lists the articles columns in Article field order.
const articleColumns = `a.id, a.author_id, a.slug, a.title, a.description, a.body, a.created_at, a.updated_at`

// ArticleService reads and writes the article aggregate.
type ArticleService struct {
	db     *db.DB
	fanOut int
	newID  func() uuid.UUID
}

// NewArticleService creates an ArticleService. List views are assembled with at most half
// of the pool's connections in flight, so one list request cannot starve the others.
func NewArticleService(database *db.DB) *ArticleService {
	fanOut := defaultFanOut
	if database != nil && database.Pool != nil {
		if n := int(database.Pool.Config().MaxConns) / 2; n > 0 {
			fanOut = n
		}
	}
	return &ArticleService{db: database, fanOut: fanOut, newID: uuid.New}
}

// Actor is the authenticated user on whose behalf a write runs, as named by the access token.
type Actor struct {
	ID       uuid.UUID
	Username string
}

// ActorFromClaims builds the Actor for a verified token.
func ActorFromClaims(claims *auth.CustomClaims) Actor {
	return Actor{ID: claims.UserID, Username: claims.Username}
}

// resolveActor looks the actor up by username inside the caller's transaction.
//
// A token keeps the username it was issued with until it expires, while the account may have
// been renamed and the old name taken by someone else since. The resolved id must therefore
// match the id in the token; otherwise the token no longer speaks for that username.
func resolveActor(ctx context.Context, q db.Querier, actor Actor) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, actor.Username).Scan(&id)
	if err != nil {
		if db.IsNoRows(err) {
			return uuid.Nil, apperror.NewNotFoundError("user not found", nil)
		}
		return uuid.Nil, db.WrapError("failed to look up user", err)
	}
	if id != actor.ID {
		return uuid.Nil, apperror.NewAuthError("token does not match the current account, please log in again", nil)
	}
	return id, nil
}

// ArticleIDBySlug resolves a slug to the article id using q, which may be a pool
// connection or an open transaction.
func ArticleIDBySlug(ctx context.Context, q db.Querier, slug string) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.QueryRow(ctx, `SELECT id FROM articles WHERE slug = $1`, slug).Scan(&id)
	if err != nil {
		if db.IsNoRows(err) {
			return uuid.Nil, apperror.NewNotFoundError("article not found", nil)
		}
		return uuid.Nil, db.WrapError("failed to look up article", err)
	}
	return id, nil
}

// lockedArticle is the part of an article row needed for authorization.
type lockedArticle struct {
	ID       uuid.UUID
	AuthorID uuid.UUID
}

// lockArticleForAuthor locks the article row for the rest of tx and checks that userID wrote it.
func lockArticleForAuthor(ctx context.Context, tx pgx.Tx, slug string, userID uuid.UUID) (lockedArticle, error) {
	var a lockedArticle
	err := tx.QueryRow(ctx, `SELECT id, author_id FROM articles WHERE slug = $1 FOR UPDATE`, slug).Scan(&a.ID, &a.AuthorID)
	if err != nil {
		if db.IsNoRows(err) {
			return a, apperror.NewNotFoundError("article not found", nil)
		}
		return a, db.WrapError("failed to lock article", err)
	}
	if a.AuthorID != userID {
		return a, apperror.NewForbiddenError("only the author may modify this article", nil)
	}
	return a, nil
}
