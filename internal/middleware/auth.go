// Package middleware provides HTTP middlewares for authentication and
// request logging.
package middleware

import (
	"context"
	"net/http"

	"github.com/akarpenko/todoapi/internal/models"
)

// AuthHeader is the request header carrying the opaque signed token.
const AuthHeader = "x-auth"

type ctxKey string

const (
	userKey  ctxKey = "user"
	tokenKey ctxKey = "token"
)

// TokenAuthenticator resolves a user from a presented token. Resolution
// requires both a valid signature and presence in the user's stored
// token list.
type TokenAuthenticator interface {
	FindByToken(ctx context.Context, token string) (*models.User, error)
}

// RequireAuth enforces token authentication. It reads the x-auth header
// and resolves the user; on any failure (missing header, bad signature,
// revoked token, store error) it answers 401 with an empty body, never
// revealing which check failed. On success the resolved user and the raw
// token are bound into the request context for downstream handlers.
func RequireAuth(auth TokenAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := r.Header.Get(AuthHeader)
			if tok == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			user, err := auth.FindByToken(r.Context(), tok)
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			ctx = context.WithValue(ctx, tokenKey, tok)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext extracts the authenticated user bound by RequireAuth.
// Returns nil if the request did not pass through the middleware.
func UserFromContext(ctx context.Context) *models.User {
	if user, ok := ctx.Value(userKey).(*models.User); ok {
		return user
	}
	return nil
}

// TokenFromContext extracts the raw presented token bound by RequireAuth.
// Returns an empty string if not present.
func TokenFromContext(ctx context.Context) string {
	if tok, ok := ctx.Value(tokenKey).(string); ok {
		return tok
	}
	return ""
}
