package handlers

import (
	"net/http"

	"tripshare-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles account HTTP requests
type AuthHandler struct {
	userService *services.UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// SignUpRequest represents the request body for signing up
type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// SignInRequest represents the request body for signing in
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordResetRequest represents the request body for starting a reset
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest represents the request body for finishing a reset
type PasswordResetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// SignUp handles POST /api/v1/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.userService.SignUp(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		respondServiceError(w, r, err, "Failed to sign up")
		return
	}

	log.Info().Str("user_id", res.Profile.ID).Msg("Profile created")
	respondJSON(w, http.StatusCreated, res)
}

// SignIn handles POST /api/v1/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.userService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, r, err, "Failed to sign in")
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// SignOut handles POST /api/v1/auth/signout. Tokens are stateless, so the
// client discards its copy.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// RequestPasswordReset handles POST /api/v1/auth/password-reset
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.userService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		respondServiceError(w, r, err, "Failed to request password reset")
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "if the account exists, a reset link was sent"})
}

// ConfirmPasswordReset handles POST /api/v1/auth/password-reset/confirm
func (h *AuthHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetConfirmRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.userService.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		respondServiceError(w, r, err, "Failed to reset password")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
