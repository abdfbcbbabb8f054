// Package auth provides authentication and authorization functionality
// This file, `dto.go` (Data Transfer Object), defines structures used for
// transferring data in API requests and responses related to authentication.
package auth

// RegisterUser holds the fields required to create an account.
type RegisterUser struct {
	Username string `json:"username" validate:"required,min=3,max=20,username" example:"alice"`
	Email    string `json:"email" validate:"required,email" example:"alice@example.com"`
	Password string `json:"password" validate:"required,min=8,max=72" example:"strongpassword123"`
}

// RegisterRequest represents the registration request payload: {"user": {...}}.
type RegisterRequest struct {
	User RegisterUser `json:"user"`
}

// LoginUser holds login credentials.
type LoginUser struct {
	Email    string `json:"email" validate:"required,email" example:"alice@example.com"`
	Password string `json:"password" validate:"required" example:"strongpassword123"`
}

// LoginRequest represents the login request payload: {"user": {...}}.
type LoginRequest struct {
	User LoginUser `json:"user"`
}

// AuthenticatedUser is the user representation returned after register, login and
// profile updates. Token is the access token; RefreshToken is only set on register and login.
type AuthenticatedUser struct {
	Username     string  `json:"username" example:"alice"`
	Email        string  `json:"email" example:"alice@example.com"`
	Bio          *string `json:"bio" example:"I write about Go"`
	Token        string  `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string  `json:"refreshToken,omitempty" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// UserResponse wraps AuthenticatedUser: {"user": {...}}.
type UserResponse struct {
	User AuthenticatedUser `json:"user"`
}

// TokenResponse represents the authentication token response
type TokenResponse struct {
	AccessToken  string `json:"accessToken" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string `json:"refreshToken" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType    string `json:"tokenType" example:"Bearer"`
	// ExpiresIn is the access token expiry as a unix timestamp.
	ExpiresIn int64 `json:"expiresIn" example:"1767225600"`
}

// RefreshTokenRequest represents the token refresh request payload
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// NewAuthenticatedUser builds the response representation of u with the given tokens.
func NewAuthenticatedUser(u *User, tokens *TokenResponse) AuthenticatedUser {
	out := AuthenticatedUser{
		Username: u.Username,
		Email:    u.Email,
		Bio:      u.Bio,
	}
	if tokens != nil {
		out.Token = tokens.AccessToken
		out.RefreshToken = tokens.RefreshToken
	}
	return out
}
