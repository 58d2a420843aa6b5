package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/vitraforge/atelier/internal/auth"
)

// contextKey is a custom type used for keys in context.Context. Using a custom
// type prevents collisions between context keys defined in different packages.
type contextKey string

const (
	userContextKey  = contextKey("userID")
	adminContextKey = contextKey("isAdmin")
)

// authMiddleware protects routes that require authentication. It accepts a
// JWT from either the 'Authorization' header or a 'token' URL query parameter
// (the latter is needed for SSE connections, where custom headers are not
// straightforward). A valid token's user id and admin flag are injected into
// the request context; anything else terminates the request with 401.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := ""

		// 1. Standard "Authorization: Bearer <token>" header.
		authHeader := r.Header.Get("Authorization")
		headerParts := strings.Split(authHeader, " ")
		if len(headerParts) == 2 && strings.ToLower(headerParts[0]) == "bearer" {
			tokenString = headerParts[1]
		}

		// 2. Fall back to the URL query for event-stream connections.
		if tokenString == "" {
			tokenString = r.URL.Query().Get("token")
		}

		if tokenString == "" {
			s.errorJSON(w, errors.New("authorization token is required"), http.StatusUnauthorized)
			return
		}

		claims, err := auth.ValidateJWT(tokenString, s.config.JwtSecret)
		if err != nil {
			s.errorJSON(w, errors.New("invalid or expired token"), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, claims.UserID)
		ctx = context.WithValue(ctx, adminContextKey, claims.IsAdmin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// adminMiddleware sits inside the authenticated group and rejects anyone
// whose session does not carry the admin flag.
func (s *Server) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		isAdmin, ok := r.Context().Value(adminContextKey).(bool)
		if !ok || !isAdmin {
			s.errorJSON(w, errors.New("forbidden: admin access required"), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// getUserIDFromContext safely retrieves the authenticated user's id from the
// request context. Only call from handlers behind the authMiddleware.
func (s *Server) getUserIDFromContext(r *http.Request) (string, error) {
	userID, ok := r.Context().Value(userContextKey).(string)
	if !ok {
		// Indicates a server-side wiring error, not a client mistake.
		return "", errors.New("could not retrieve user ID from context")
	}
	return userID, nil
}
