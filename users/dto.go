// Package users, as part of the user profile management module.
// This file, `dto.go`, defines Data Transfer Objects (DTOs) for the users module.
package users

import "time"

// CurrentUser is the signed-in user's own account data.
type CurrentUser struct {
	Username  string    `json:"username" example:"alice"`
	Email     string    `json:"email" example:"alice@example.com"`
	Bio       *string   `json:"bio" example:"I write about Go"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CurrentUserResponse wraps CurrentUser: {"user": {...}}.
type CurrentUserResponse struct {
	User CurrentUser `json:"user"`
}

// UpdateUser holds the optional fields of a profile update.
// A nil pointer leaves the column untouched; an empty bio clears it.
type UpdateUser struct {
	Username *string `json:"username,omitempty" validate:"omitnil,min=3,max=20,username" example:"alice2"`
	Email    *string `json:"email,omitempty" validate:"omitnil,email" example:"alice2@example.com"`
	Password *string `json:"password,omitempty" validate:"omitnil,min=8,max=72" example:"newpassword123"`
	Bio      *string `json:"bio,omitempty" validate:"omitnil,max=1000" example:"Now writing about databases too"`
}

// UpdateUserRequest represents the update payload: {"user": {...}}.
type UpdateUserRequest struct {
	User UpdateUser `json:"user"`
}

// Empty reports whether no field is set.
func (u UpdateUser) Empty() bool {
	return u.Username == nil && u.Email == nil && u.Password == nil && u.Bio == nil
}
