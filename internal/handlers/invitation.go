package handlers

import (
	"net/http"

	"tripshare-backend/internal/middleware"
	"tripshare-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// InvitationHandler handles collaboration invitation HTTP requests
type InvitationHandler struct {
	invitationService *services.InvitationService
}

// NewInvitationHandler creates a new invitation handler
func NewInvitationHandler(invitationService *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

// InviteRequest represents the request body for inviting a collaborator
type InviteRequest struct {
	Email string `json:"email"`
}

// CreateInvitation handles POST /api/v1/trips/{trip_id}/invitations
func (h *InvitationHandler) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	var req InviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := middleware.GetUserID(r.Context())
	inv, err := h.invitationService.Create(r.Context(), userID, chi.URLParam(r, "trip_id"), req.Email)
	if err != nil {
		respondServiceError(w, r, err, "Failed to create invitation")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("trip_id", inv.TripID).
		Str("invitation_id", inv.ID).
		Msg("Invitation created")
	respondJSON(w, http.StatusCreated, inv)
}

// ListInvitations handles GET /api/v1/invitations
func (h *InvitationHandler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	invitations, err := h.invitationService.ListMine(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "Failed to list invitations")
		return
	}
	respondJSON(w, http.StatusOK, invitations)
}

// AcceptInvitation handles POST /api/v1/invitations/{id}/accept
func (h *InvitationHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	inv, err := h.invitationService.Accept(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to accept invitation")
		return
	}
	respondJSON(w, http.StatusOK, inv)
}

// DeclineInvitation handles POST /api/v1/invitations/{id}/decline
func (h *InvitationHandler) DeclineInvitation(w http.ResponseWriter, r *http.Request) {
	inv, err := h.invitationService.Decline(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to decline invitation")
		return
	}
	respondJSON(w, http.StatusOK, inv)
}

// CancelInvitation handles DELETE /api/v1/invitations/{id}
func (h *InvitationHandler) CancelInvitation(w http.ResponseWriter, r *http.Request) {
	inv, err := h.invitationService.Cancel(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to cancel invitation")
		return
	}
	respondJSON(w, http.StatusOK, inv)
}
