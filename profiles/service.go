package profiles

import (
	"context"

	"github.com/google/uuid"

	"github.com/devactivity/dasar-actix-web/apperror"
	"github.com/devactivity/dasar-actix-web/db"
)

// ProfileService reads profiles and toggles follow edges.
type ProfileService struct {
	db *db.DB
}

// NewProfileService creates a new ProfileService.
func NewProfileService(database *db.DB) *ProfileService {
	return &ProfileService{db: database}
}

type profileRow struct {
	ID       uuid.UUID
	Username string
	Bio      *string
}

func getProfileRow(ctx context.Context, q db.Querier, username string) (*profileRow, error) {
	var p profileRow
	err := q.QueryRow(ctx, `SELECT id, username, bio FROM users WHERE username = $1`, username).
		Scan(&p.ID, &p.Username, &p.Bio)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperror.NewNotFoundError("profile not found", nil)
		}
		return nil, db.WrapError("failed to load profile", err)
	}
	return &p, nil
}

func isFollowing(ctx context.Context, q db.Querier, userID uuid.UUID, followerID *uuid.UUID) (bool, error) {
	if followerID == nil {
		return false, nil
	}
	var following bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM followers WHERE user_id = $1 AND follower_id = $2)`,
		userID, *followerID,
	).Scan(&following)
	if err != nil {
		return false, db.WrapError("failed to load follow status", err)
	}
	return following, nil
}

func (s *ProfileService) profile(ctx context.Context, q db.Querier, row *profileRow, viewerID *uuid.UUID) (*Profile, error) {
	following, err := isFollowing(ctx, q, row.ID, viewerID)
	if err != nil {
		return nil, err
	}
	return &Profile{Username: row.Username, Bio: row.Bio, IsFollowing: following}, nil
}

// GetProfile returns the profile of username. isFollowing is false for anonymous viewers.
func (s *ProfileService) GetProfile(ctx context.Context, username string, viewerID *uuid.UUID) (*Profile, error) {
	var profile *Profile
	err := s.db.WithConn(ctx, func(q db.Querier) error {
		row, err := getProfileRow(ctx, q, username)
		if err != nil {
			return err
		}
		profile, err = s.profile(ctx, q, row, viewerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// Follow makes actingUserID follow targetUsername. Following twice is a no-op;
// following yourself is rejected as unprocessable.
func (s *ProfileService) Follow(ctx context.Context, targetUsername string, actingUserID uuid.UUID) (*Profile, error) {
	var profile *Profile
	err := s.db.WithConn(ctx, func(q db.Querier) error {
		target, err := getProfileRow(ctx, q, targetUsername)
		if err != nil {
			return err
		}
		if target.ID == actingUserID {
			details := apperror.FieldErrors{}
			details.Add("username", "self_follow", "cannot follow yourself")
			return apperror.NewUnprocessableError("You cannot follow yourself", details)
		}

		_, err = q.Exec(ctx,
			`INSERT INTO followers (user_id, follower_id) VALUES ($1, $2)
			 ON CONFLICT (user_id, follower_id) DO NOTHING`,
			target.ID, actingUserID,
		)
		if err != nil {
			return db.WrapError("failed to follow user", err)
		}

		profile, err = s.profile(ctx, q, target, &actingUserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// Unfollow removes the follow edge from actingUserID to targetUsername.
// It returns NotFound when the target does not exist or was not followed.
func (s *ProfileService) Unfollow(ctx context.Context, targetUsername string, actingUserID uuid.UUID) (*Profile, error) {
	var profile *Profile
	err := s.db.WithConn(ctx, func(q db.Querier) error {
		target, err := getProfileRow(ctx, q, targetUsername)
		if err != nil {
			return err
		}

		tag, err := q.Exec(ctx, `DELETE FROM followers WHERE user_id = $1 AND follower_id = $2`, target.ID, actingUserID)
		if err != nil {
			return db.WrapError("failed to unfollow user", err)
		}
		if tag.RowsAffected() == 0 {
			return apperror.NewNotFoundError("you are not following this user", nil)
		}

		profile, err = s.profile(ctx, q, target, &actingUserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}
