package handlers

import (
	"net/http"

	"tripshare-backend/internal/middleware"
	"tripshare-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// ProfileHandler handles profile HTTP requests
type ProfileHandler struct {
	profileService *services.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GetMe handles GET /api/v1/profiles/me
func (h *ProfileHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileService.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "Failed to get profile")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// UpdateMe handles PATCH /api/v1/profiles/me
func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req services.ProfileUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.profileService.Update(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update profile")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// GetProfile handles GET /api/v1/profiles/{id}. Other users see the public card.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	profile, err := h.profileService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get profile")
		return
	}
	if id == middleware.GetUserID(r.Context()) {
		respondJSON(w, http.StatusOK, profile)
		return
	}
	respondJSON(w, http.StatusOK, profile.Summary())
}

// PresignAvatar handles POST /api/v1/profiles/me/avatar
func (h *ProfileHandler) PresignAvatar(w http.ResponseWriter, r *http.Request) {
	var req services.UploadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.profileService.PresignAvatar(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to presign avatar upload")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
