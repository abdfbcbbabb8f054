// Package auth, as part of the authentication module.
// This file, `middleware.go`, defines the HTTP middleware that authenticates requests.
// JWTMiddleware guards routes that need a signed-in user; OptionalJWTMiddleware is used on
// read routes where a signed-in viewer only changes viewer-relative flags.
package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/devactivity/dasar-actix-web/apperror"
	"github.com/devactivity/dasar-actix-web/respond"
)

// TokenValidator validates access tokens. *AuthService implements it.
type TokenValidator interface {
	ValidateAccessToken(token string) (*CustomClaims, error)
}

// JWTMiddleware creates middleware that rejects requests without a valid access token
// and stores the token claims on the request context otherwise.
func JWTMiddleware(tokens TokenValidator, logger *zap.Logger) func(next http.Handler) http.Handler {
	return authenticate(tokens, logger, true)
}

// OptionalJWTMiddleware lets anonymous requests through untouched. A present but invalid
// token is still rejected, so clients learn their session expired.
func OptionalJWTMiddleware(tokens TokenValidator, logger *zap.Logger) func(next http.Handler) http.Handler {
	return authenticate(tokens, logger, false)
}

func authenticate(tokens TokenValidator, logger *zap.Logger, required bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				if required {
					respond.Error(w, r, logger, apperror.NewAuthError("Authorization header is missing", nil))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			tokenString, ok := parseAuthorizationHeader(authHeader)
			if !ok {
				respond.Error(w, r, logger, apperror.NewAuthError("Authorization header format must be Bearer {token}", nil))
				return
			}

			claims, err := tokens.ValidateAccessToken(tokenString)
			if err != nil {
				respond.Error(w, r, logger, apperror.NewAuthError("Invalid token", err))
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContextWithClaims(r.Context(), claims)))
		})
	}
}

// parseAuthorizationHeader accepts "Bearer <jwt>" and "Token <jwt>" (case-insensitive scheme).
func parseAuthorizationHeader(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return "", false
	}
	switch strings.ToLower(scheme) {
	case "bearer", "token":
	default:
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
