package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"tripshare-backend/internal/models"
	"tripshare-backend/internal/services"

	"github.com/stretchr/testify/assert"
)

type stubAuth map[string]*models.Profile

func (s stubAuth) Authenticate(_ context.Context, token string) (*models.Profile, error) {
	if token == "banned" {
		return nil, services.ErrBanned
	}
	p, ok := s[token]
	if !ok {
		return nil, services.ErrUnauthorized
	}
	return p, nil
}

func echoCaller(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(GetUserID(r.Context()) + "/" + GetRole(r.Context())))
}

func TestAuthMiddleware(t *testing.T) {
	auth := stubAuth{
		"good":  {ID: "u1", Role: models.RoleUser},
		"admin": {ID: "a1", Role: models.RoleAdmin},
	}
	handler := AuthMiddleware(auth)(http.HandlerFunc(echoCaller))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, ""},
		{"invalid token", "Bearer nope", http.StatusUnauthorized, ""},
		{"banned", "Bearer banned", http.StatusForbidden, ""},
		{"valid", "Bearer good", http.StatusOK, "u1/user"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), `"error"`)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	auth := stubAuth{
		"good":  {ID: "u1", Role: models.RoleUser},
		"admin": {ID: "a1", Role: models.RoleAdmin},
	}
	handler := AuthMiddleware(auth)(RequireAdmin(http.HandlerFunc(echoCaller)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req.Header.Set("Authorization", "Bearer admin")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a1/admin", rec.Body.String())
}
