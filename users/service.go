// Package users, as part of the user profile management module.
// This file, `service.go`, contains the business logic for the signed-in user's account.
package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/devactivity/dasar-actix-web/apperror"
	"github.com/devactivity/dasar-actix-web/auth"
	"github.com/devactivity/dasar-actix-web/db"
)

// TokenIssuer signs fresh tokens after an update changes the username. *auth.AuthService implements it.
type TokenIssuer interface {
	IssueTokens(user *auth.User) (*auth.TokenResponse, error)
}

// UserService provides methods for account management.
type UserService struct {
	db     *db.DB
	tokens TokenIssuer
}

// NewUserService creates a new UserService.
func NewUserService(database *db.DB, tokens TokenIssuer) *UserService {
	return &UserService{db: database, tokens: tokens}
}

const selectUserColumns = `id, username, email, password, bio, created_at, updated_at`

// GetCurrentUser retrieves the account of userID.
func (s *UserService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*CurrentUser, error) {
	var user *auth.User
	err := s.db.WithConn(ctx, func(q db.Querier) error {
		var err error
		user, err = s.getUser(ctx, q, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toCurrentUser(user), nil
}

// UpdateCurrentUser applies the non-nil fields of req and returns the updated user with
// a new token pair, since the old tokens may carry a stale username.
func (s *UserService) UpdateCurrentUser(ctx context.Context, userID uuid.UUID, req UpdateUser) (*auth.AuthenticatedUser, error) {
	// Build the SET clause from the provided fields. Only placeholders are spliced into the
	// SQL text; every value travels as a bind parameter.
	var setClauses []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Username != nil {
		add("username", *req.Username)
	}
	if req.Email != nil {
		add("email", strings.ToLower(*req.Email))
	}
	if req.Password != nil {
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		add("password", hashed)
	}
	if req.Bio != nil {
		if strings.TrimSpace(*req.Bio) == "" {
			add("bio", nil)
		} else {
			add("bio", *req.Bio)
		}
	}

	var user *auth.User
	err := s.db.WithConn(ctx, func(q db.Querier) error {
		if len(setClauses) == 0 {
			var err error
			user, err = s.getUser(ctx, q, userID)
			return err
		}

		args = append(args, userID)
		query := fmt.Sprintf(`
			UPDATE users
			SET %s, updated_at = now()
			WHERE id = $%d
			RETURNING %s`, strings.Join(setClauses, ", "), len(args), selectUserColumns)

		user = &auth.User{}
		err := q.QueryRow(ctx, query, args...).Scan(
			&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.Bio, &user.CreatedAt, &user.UpdatedAt,
		)
		if err == nil {
			return nil
		}
		if db.IsNoRows(err) {
			return apperror.NewNotFoundError("user not found", nil)
		}
		if appErr := auth.UserConstraintError(err); appErr != nil {
			return appErr
		}
		return db.WrapError("failed to update user", err)
	})
	if err != nil {
		return nil, err
	}

	tokens, err := s.tokens.IssueTokens(user)
	if err != nil {
		return nil, err
	}
	out := auth.NewAuthenticatedUser(user, tokens)
	return &out, nil
}

// DeleteCurrentUser removes the account. Articles, comments, favorites and follow edges owned
// by the user are removed by the foreign keys' ON DELETE CASCADE.
func (s *UserService) DeleteCurrentUser(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithConn(ctx, func(q db.Querier) error {
		tag, err := q.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
		if err != nil {
			return db.WrapError("failed to delete user", err)
		}
		if tag.RowsAffected() == 0 {
			return apperror.NewNotFoundError("user not found", nil)
		}
		return nil
	})
}

func (s *UserService) getUser(ctx context.Context, q db.Querier, userID uuid.UUID) (*auth.User, error) {
	var user auth.User
	err := q.QueryRow(ctx, `SELECT `+selectUserColumns+` FROM users WHERE id = $1`, userID).Scan(
		&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.Bio, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, db.WrapError("failed to get user", err)
	}
	return &user, nil
}

func toCurrentUser(u *auth.User) *CurrentUser {
	return &CurrentUser{
		Username:  u.Username,
		Email:     u.Email,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
