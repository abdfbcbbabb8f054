// Package auth handles authentication: registration, login, token refresh, JWT issuing and
// validation, and the middleware that puts the caller's identity on the request context.
// This file defines the User entity shared by the users and profiles packages.
package auth

import (
	"time"

	"github.com/google/uuid"
)

// User represents a row of the users table.
// The hashed password never leaves the service layer; `json:"-"` keeps it out of any
// accidental serialization.
type User struct {
	ID             uuid.UUID `json:"-"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	Bio            *string   `json:"bio"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}
