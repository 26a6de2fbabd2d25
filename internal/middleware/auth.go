package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"tripshare-backend/internal/models"
	"tripshare-backend/internal/services"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	roleKey   contextKey = "role"
)

// Authenticator resolves a bearer token to a profile
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Profile, error)
}

// AuthMiddleware creates a middleware for JWT authentication
func AuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			profile, err := auth.Authenticate(r.Context(), parts[1])
			if err != nil {
				if errors.Is(err, services.ErrBanned) {
					respondError(w, "Account is banned", http.StatusForbidden)
					return
				}
				if errors.Is(err, services.ErrUnauthorized) {
					respondError(w, "Invalid token", http.StatusUnauthorized)
					return
				}
				respondError(w, "Failed to authenticate", http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), profile)))
		})
	}
}

// RequireAdmin rejects callers without the admin role. It must run after AuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetRole(r.Context()) != models.RoleAdmin {
			respondError(w, "Admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithProfile stores the caller's ID and role in ctx
func WithProfile(ctx context.Context, p *models.Profile) context.Context {
	ctx = context.WithValue(ctx, userIDKey, p.ID)
	return context.WithValue(ctx, roleKey, p.Role)
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

// GetRole extracts the caller's role from context
func GetRole(ctx context.Context) string {
	role, _ := ctx.Value(roleKey).(string)
	return role
}

// IsAdmin reports whether the caller holds the admin role
func IsAdmin(ctx context.Context) bool {
	return GetRole(ctx) == models.RoleAdmin
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
