package handlers

import (
	"net/http"
	"strconv"

	"tripshare-backend/internal/middleware"
	"tripshare-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// TripHandler handles trip HTTP requests
type TripHandler struct {
	tripService *services.TripService
}

// NewTripHandler creates a new trip handler
func NewTripHandler(tripService *services.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// ShareRequest represents the request body for toggling guide sharing
type ShareRequest struct {
	Public bool `json:"public"`
}

// CreateTrip handles POST /api/v1/trips
func (h *TripHandler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req services.TripInput
	if !decodeJSON(w, r, &req) {
		return
	}

	trip, err := h.tripService.Create(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to create trip")
		return
	}
	respondJSON(w, http.StatusCreated, trip)
}

// ListTrips handles GET /api/v1/trips
func (h *TripHandler) ListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := h.tripService.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "Failed to list trips")
		return
	}
	respondJSON(w, http.StatusOK, trips)
}

// GetTrip handles GET /api/v1/trips/{trip_id}
func (h *TripHandler) GetTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := h.tripService.Get(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "trip_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to get trip")
		return
	}
	respondJSON(w, http.StatusOK, trip)
}

// UpdateTrip handles PATCH /api/v1/trips/{trip_id}
func (h *TripHandler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	var req services.TripInput
	if !decodeJSON(w, r, &req) {
		return
	}

	trip, err := h.tripService.Update(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "trip_id"), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update trip")
		return
	}
	respondJSON(w, http.StatusOK, trip)
}

// DeleteTrip handles DELETE /api/v1/trips/{trip_id}
func (h *TripHandler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	if err := h.tripService.Delete(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "trip_id")); err != nil {
		respondServiceError(w, r, err, "Failed to delete trip")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ShareTrip handles POST /api/v1/trips/{trip_id}/share
func (h *TripHandler) ShareTrip(w http.ResponseWriter, r *http.Request) {
	var req ShareRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	trip, err := h.tripService.Share(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "trip_id"), req.Public)
	if err != nil {
		respondServiceError(w, r, err, "Failed to share trip")
		return
	}
	respondJSON(w, http.StatusOK, trip)
}

// ListGuides handles GET /api/v1/guides
func (h *TripHandler) ListGuides(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	trips, total, err := h.tripService.ListGuides(r.Context(), limit, offset)
	if err != nil {
		respondServiceError(w, r, err, "Failed to list guides")
		return
	}
	respondJSON(w, http.StatusOK, ListResponse{Items: trips, Total: total})
}

// ListMembers handles GET /api/v1/trips/{trip_id}/members
func (h *TripHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.tripService.Members(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "trip_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to list members")
		return
	}
	respondJSON(w, http.StatusOK, members)
}

// RemoveMember handles DELETE /api/v1/trips/{trip_id}/members/{user_id}
func (h *TripHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	err := h.tripService.RemoveCollaborator(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "trip_id"), chi.URLParam(r, "user_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to remove member")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ActivityLog handles GET /api/v1/trips/{trip_id}/activity-log
func (h *TripHandler) ActivityLog(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	entries, err := h.tripService.ActivityLog(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "trip_id"), limit)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get activity log")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
