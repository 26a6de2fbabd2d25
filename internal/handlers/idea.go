package handlers

import (
	"net/http"

	"tripshare-backend/internal/middleware"
	"tripshare-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// IdeaHandler handles idea board HTTP requests
type IdeaHandler struct {
	ideaService *services.IdeaService
}

// NewIdeaHandler creates a new idea handler
func NewIdeaHandler(ideaService *services.IdeaService) *IdeaHandler {
	return &IdeaHandler{ideaService: ideaService}
}

// ListIdeas handles GET /api/v1/trips/{trip_id}/ideas
func (h *IdeaHandler) ListIdeas(w http.ResponseWriter, r *http.Request) {
	ideas, err := h.ideaService.List(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "trip_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to list ideas")
		return
	}
	respondJSON(w, http.StatusOK, ideas)
}

// CreateIdea handles POST /api/v1/trips/{trip_id}/ideas
func (h *IdeaHandler) CreateIdea(w http.ResponseWriter, r *http.Request) {
	var req services.IdeaInput
	if !decodeJSON(w, r, &req) {
		return
	}

	idea, err := h.ideaService.Create(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "trip_id"), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to create idea")
		return
	}
	respondJSON(w, http.StatusCreated, idea)
}

// UpdateIdea handles PATCH /api/v1/trips/{trip_id}/ideas/{idea_id}
func (h *IdeaHandler) UpdateIdea(w http.ResponseWriter, r *http.Request) {
	var req services.IdeaInput
	if !decodeJSON(w, r, &req) {
		return
	}

	idea, err := h.ideaService.Update(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "trip_id"), chi.URLParam(r, "idea_id"), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update idea")
		return
	}
	respondJSON(w, http.StatusOK, idea)
}

// DeleteIdea handles DELETE /api/v1/trips/{trip_id}/ideas/{idea_id}
func (h *IdeaHandler) DeleteIdea(w http.ResponseWriter, r *http.Request) {
	err := h.ideaService.Delete(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "trip_id"), chi.URLParam(r, "idea_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to delete idea")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PromoteIdea handles POST /api/v1/trips/{trip_id}/ideas/{idea_id}/promote
func (h *IdeaHandler) PromoteIdea(w http.ResponseWriter, r *http.Request) {
	var req services.PromoteInput
	if !decodeJSON(w, r, &req) {
		return
	}

	activity, err := h.ideaService.Promote(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "trip_id"), chi.URLParam(r, "idea_id"), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to promote idea")
		return
	}
	respondJSON(w, http.StatusCreated, activity)
}
