package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"spendmate/internal/auth"
)

// contextKey is a private type for context values to avoid key collisions.
type contextKey string

// UserIDKey is the context key holding the authenticated user's ID.
const UserIDKey contextKey = "userID"

// UsernameKey is the context key holding the authenticated username.
const UsernameKey contextKey = "username"

// ClaimsKey is the context key holding the full token claims.
const ClaimsKey contextKey = "claims"

// AuthMiddleware validates the bearer token and stores the caller's identity
// in the request context.
func AuthMiddleware(jwtKey string, blacklist auth.TokenBlacklist) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				http.Error(w, "authorization header must be Bearer {token}", http.StatusUnauthorized)
				return
			}

			claims, err := auth.ValidateToken(r.Context(), headerParts[1], jwtKey, blacklist)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UsernameKey, claims.Username)
			ctx = context.WithValue(ctx, ClaimsKey, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext returns the authenticated user's ID, if present.
func GetUserIDFromContext(ctx context.Context) (uint, bool) {
	userID, ok := ctx.Value(UserIDKey).(uint)
	return userID, ok
}

// GetUsernameFromContext returns the authenticated username, if present.
func GetUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}

// GetClaimsFromContext returns the full token claims, if present.
func GetClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*auth.Claims)
	return claims, ok
}
