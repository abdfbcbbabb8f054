package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/devactivity/dasar-actix-web/apperror"
	"github.com/devactivity/dasar-actix-web/config"
	"github.com/devactivity/dasar-actix-web/db"
)

// Constants defining token types and the JWT issuer.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	tokenIssuer      = "dasar-actix-web"
)

// AuthService provides authentication-related services.
// Dependencies are injected through NewAuthService; it holds no global state.
type AuthService struct {
	db         *db.DB
	authConfig config.AuthConfig
	now        func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(database *db.DB, authConfig config.AuthConfig) *AuthService {
	return &AuthService{
		db:         database,
		authConfig: authConfig,
		now:        time.Now,
	}
}

// CustomClaims is the payload of every token the service signs.
// Username travels with the id so write operations can act by username without a lookup;
// it is refreshed whenever a new token is issued after a profile update.
type CustomClaims struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	TokenType string    `json:"token_type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// Register creates a new user and signs them in.
func (s *AuthService) Register(ctx context.Context, req RegisterUser) (*AuthenticatedUser, error) {
	hashedPassword, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Username:       req.Username,
		Email:          strings.ToLower(req.Email),
		HashedPassword: hashedPassword,
	}

	query := `INSERT INTO users (username, email, password)
              VALUES ($1, $2, $3)
              RETURNING id, created_at, updated_at`
	err = s.db.WithConn(ctx, func(q db.Querier) error {
		return q.QueryRow(ctx, query, user.Username, user.Email, user.HashedPassword).
			Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	})
	if err != nil {
		if appErr := UserConstraintError(err); appErr != nil {
			return nil, appErr
		}
		return nil, db.WrapError("failed to create user", err)
	}

	tokens, err := s.IssueTokens(user)
	if err != nil {
		return nil, err
	}
	out := NewAuthenticatedUser(user, tokens)
	return &out, nil
}

// Login authenticates a user by email and password.
// Unknown emails and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req LoginUser) (*AuthenticatedUser, error) {
	user, err := s.getUser(ctx, "email", strings.ToLower(req.Email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewAuthError("email or password is invalid", nil)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, apperror.NewAuthError("email or password is invalid", nil)
	}

	tokens, err := s.IssueTokens(user)
	if err != nil {
		return nil, err
	}
	out := NewAuthenticatedUser(user, tokens)
	return &out, nil
}

// RefreshToken issues a new access token for a valid refresh token.
// The user is reloaded so the new token carries the current username.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	claims, err := s.validateToken(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, apperror.NewAuthError("invalid refresh token", err)
	}

	user, err := s.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewAuthError("invalid refresh token", err)
		}
		return nil, err
	}

	accessToken, expiresAt, err := s.generateSpecificToken(user, tokenTypeAccess, s.authConfig.AccessTokenDuration)
	if err != nil {
		return nil, apperror.NewInternalError("failed to generate access token", err)
	}

	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    expiresAt.Unix(),
	}, nil
}

// IssueTokens creates an access and a refresh token for user.
func (s *AuthService) IssueTokens(user *User) (*TokenResponse, error) {
	accessToken, accessExpiresAt, err := s.generateSpecificToken(user, tokenTypeAccess, s.authConfig.AccessTokenDuration)
	if err != nil {
		return nil, apperror.NewInternalError("failed to generate access token", err)
	}

	refreshToken, _, err := s.generateSpecificToken(user, tokenTypeRefresh, s.authConfig.RefreshTokenDuration)
	if err != nil {
		return nil, apperror.NewInternalError("failed to generate refresh token", err)
	}

	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    accessExpiresAt.Unix(),
	}, nil
}

// ValidateAccessToken parses an access token and returns its claims.
func (s *AuthService) ValidateAccessToken(tokenString string) (*CustomClaims, error) {
	return s.validateToken(tokenString, tokenTypeAccess)
}

func (s *AuthService) generateSpecificToken(user *User, tokenType string, duration time.Duration) (string, time.Time, error) {
	now := s.now()
	expirationTime := now.Add(duration)
	claims := &CustomClaims{
		UserID:    user.ID,
		Username:  user.Username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   user.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.authConfig.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expirationTime, nil
}

// validateToken checks the signature, expiry, issuer and token type.
func (s *AuthService) validateToken(tokenString string, expectedTokenType string) (*CustomClaims, error) {
	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.authConfig.JWTSecret), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is invalid")
	}
	if claims.TokenType != expectedTokenType {
		return nil, fmt.Errorf("invalid token type: expected %s, got %s", expectedTokenType, claims.TokenType)
	}
	if claims.UserID == uuid.Nil {
		return nil, errors.New("user_id claim is missing")
	}
	return claims, nil
}

// GetUserByID retrieves a user by id.
func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.getUser(ctx, "id", id)
}

// GetUserByUsername retrieves a user by their username.
func (s *AuthService) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.getUser(ctx, "username", username)
}

// getUser loads one user by a fixed column name. column is never user input.
func (s *AuthService) getUser(ctx context.Context, column string, value any) (*User, error) {
	var user User
	query := `SELECT id, username, email, password, bio, created_at, updated_at FROM users WHERE ` + column + ` = $1`
	err := s.db.WithConn(ctx, func(q db.Querier) error {
		return q.QueryRow(ctx, query, value).Scan(
			&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.Bio, &user.CreatedAt, &user.UpdatedAt,
		)
	})
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, db.WrapError("failed to get user", err)
	}
	return &user, nil
}

// HashPassword hashes a plain text password with bcrypt.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			details := apperror.FieldErrors{}
			details.Add("password", "length", "must not exceed 72 bytes")
			return "", apperror.NewValidationError(details)
		}
		return "", apperror.NewInternalError("failed to hash password", err)
	}
	return string(hashed), nil
}

// UserConstraintError maps unique violations on the users table to a 422 with field details.
// It returns nil for any other error.
func UserConstraintError(err error) *apperror.AppError {
	constraint, ok := db.ConstraintViolation(err, db.UniqueViolation)
	if !ok {
		return nil
	}
	details := apperror.FieldErrors{}
	switch {
	case strings.Contains(constraint, "username"):
		details.Add("username", "taken", "has already been taken")
	case strings.Contains(constraint, "email"):
		details.Add("email", "taken", "has already been taken")
	default:
		return apperror.NewUnprocessableError("user already exists", nil)
	}
	return apperror.NewUnprocessableError("user already exists", details)
}
