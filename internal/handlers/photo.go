package handlers

import (
	"net/http"

	"tripshare-backend/internal/middleware"
	"tripshare-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// PhotoHandler handles trip photo HTTP requests
type PhotoHandler struct {
	photoService *services.PhotoService
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photoService *services.PhotoService) *PhotoHandler {
	return &PhotoHandler{photoService: photoService}
}

// GetUploadURL handles POST /api/v1/trips/{trip_id}/photos/upload
func (h *PhotoHandler) GetUploadURL(w http.ResponseWriter, r *http.Request) {
	var req services.PhotoUploadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := middleware.GetUserID(r.Context())
	resp, err := h.photoService.PresignUpload(r.Context(), userID, chi.URLParam(r, "trip_id"), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to generate upload URL")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("photo_id", resp.ID).
		Msg("Generated presigned upload URL")
	respondJSON(w, http.StatusOK, resp)
}

// ConfirmUpload handles POST /api/v1/trips/{trip_id}/photos/{photo_id}/confirm
func (h *PhotoHandler) ConfirmUpload(w http.ResponseWriter, r *http.Request) {
	photo, err := h.photoService.ConfirmUpload(r.Context(), middleware.GetUserID(r.Context()),
		chi.URLParam(r, "trip_id"), chi.URLParam(r, "photo_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to confirm upload")
		return
	}
	respondJSON(w, http.StatusOK, photo)
}

// ListPhotos handles GET /api/v1/trips/{trip_id}/photos
func (h *PhotoHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	photos, total, err := h.photoService.List(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "trip_id"), limit, offset)
	if err != nil {
		respondServiceError(w, r, err, "Failed to list photos")
		return
	}
	respondJSON(w, http.StatusOK, ListResponse{Items: photos, Total: total})
}

// DeletePhoto handles DELETE /api/v1/trips/{trip_id}/photos/{photo_id}
func (h *PhotoHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	err := h.photoService.Delete(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "trip_id"), chi.URLParam(r, "photo_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to delete photo")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
