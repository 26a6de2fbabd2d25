package handlers

import (
	"net/http"

	"tripshare-backend/internal/middleware"
	"tripshare-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// AdminHandler handles moderation and analytics HTTP requests
type AdminHandler struct {
	adminService *services.AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// BanRequest represents the request body for banning a user
type BanRequest struct {
	Banned bool `json:"banned"`
}

// Analytics handles GET /api/v1/admin/analytics
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.Analytics(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "Failed to compute analytics")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// BanUser handles POST /api/v1/admin/users/{id}/ban
func (h *AdminHandler) BanUser(w http.ResponseWriter, r *http.Request) {
	var req BanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.adminService.SetBanned(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), req.Banned)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update ban")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// DeletePost handles DELETE /api/v1/admin/posts/{id}
func (h *AdminHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.adminService.DeletePost(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, err, "Failed to delete post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
