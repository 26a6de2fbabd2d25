package handlers

import (
	"net/http"

	"tripshare-backend/internal/middleware"
	"tripshare-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// ActivityHandler handles itinerary HTTP requests
type ActivityHandler struct {
	activityService *services.ActivityService
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activityService *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// ReorderRequest represents the request body for reordering activities
type ReorderRequest struct {
	IDs []string `json:"ids"`
}

// ListActivities handles GET /api/v1/trips/{trip_id}/activities
func (h *ActivityHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	days, err := h.activityService.List(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "trip_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to list activities")
		return
	}
	respondJSON(w, http.StatusOK, days)
}

// CreateActivity handles POST /api/v1/trips/{trip_id}/activities
func (h *ActivityHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var req services.ActivityInput
	if !decodeJSON(w, r, &req) {
		return
	}

	activity, err := h.activityService.Create(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "trip_id"), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to create activity")
		return
	}
	respondJSON(w, http.StatusCreated, activity)
}

// UpdateActivity handles PATCH /api/v1/trips/{trip_id}/activities/{activity_id}
func (h *ActivityHandler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	var req services.ActivityInput
	if !decodeJSON(w, r, &req) {
		return
	}

	activity, err := h.activityService.Update(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "trip_id"), chi.URLParam(r, "activity_id"), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update activity")
		return
	}
	respondJSON(w, http.StatusOK, activity)
}

// DeleteActivity handles DELETE /api/v1/trips/{trip_id}/activities/{activity_id}
func (h *ActivityHandler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	err := h.activityService.Delete(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "trip_id"), chi.URLParam(r, "activity_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to delete activity")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderActivities handles POST /api/v1/trips/{trip_id}/activities/reorder
func (h *ActivityHandler) ReorderActivities(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	days, err := h.activityService.Reorder(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "trip_id"), req.IDs)
	if err != nil {
		respondServiceError(w, r, err, "Failed to reorder activities")
		return
	}
	respondJSON(w, http.StatusOK, days)
}
