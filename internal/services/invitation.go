package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tripshare-backend/internal/models"
	"tripshare-backend/internal/notify"
	"tripshare-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const pushTimeout = 5 * time.Second

// InvitationService handles collaboration invitations
type InvitationService struct {
	invitations InvitationStore
	trips       TripStore
	profiles    ProfileStore
	notifier    Notifier
	logger      *ActivityLogger
	publisher   ChangePublisher
	now         func() time.Time
}

// NewInvitationService creates a new invitation service
func NewInvitationService(invitations InvitationStore, trips TripStore, profiles ProfileStore, notifier Notifier, logger *ActivityLogger, publisher ChangePublisher) *InvitationService {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &InvitationService{
		invitations: invitations,
		trips:       trips,
		profiles:    profiles,
		notifier:    notifier,
		logger:      logger,
		publisher:   publisherOrNop(publisher),
		now:         time.Now,
	}
}

// Create invites email to collaborate on a trip the caller owns
func (s *InvitationService) Create(ctx context.Context, userID, tripID, email string) (*models.Invitation, error) {
	trip, err := authorize(ctx, s.trips, tripID, userID, AccessOwner)
	if err != nil {
		return nil, err
	}

	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	inviter, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "profile")
	}
	if inviter.Email == email {
		return nil, conflict("cannot invite yourself")
	}

	invitee, err := s.profiles.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up invitee: %w", err)
	}
	if invitee != nil {
		member, err := s.trips.IsCollaborator(ctx, tripID, invitee.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check collaborator: %w", err)
		}
		if member {
			return nil, conflict("user already collaborates on this trip")
		}
	}

	pending, err := s.invitations.HasPending(ctx, tripID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending invitations: %w", err)
	}
	if pending {
		return nil, conflict("an invitation is already pending for this email")
	}

	inv := &models.Invitation{
		ID:           uuid.New().String(),
		TripID:       tripID,
		InviterID:    userID,
		InviteeEmail: email,
		Status:       models.InvitationPending,
		CreatedAt:    s.now(),
	}
	if err := s.invitations.Create(ctx, inv); err != nil {
		return nil, storeErr(err, "invitation")
	}

	s.logger.log(ctx, entry{tripID, userID, ActionInvite, EntityInvitation, inv.ID, email})
	s.publisher.PublishChange(tripID, "invitations", ActionCreate, inv.ID)

	if invitee != nil && invitee.PushToken != nil {
		s.push(ctx, *invitee.PushToken, inviter, trip, inv)
	}
	return inv, nil
}

func (s *InvitationService) push(ctx context.Context, deviceToken string, inviter *models.Profile, trip *models.Trip, inv *models.Invitation) {
	ctx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()

	msg := notify.Message{
		DeviceToken: deviceToken,
		Title:       "Trip invitation",
		Body:        fmt.Sprintf("%s invited you to %s", inviter.DisplayName, trip.Title),
		Data: map[string]string{
			"invitation_id": inv.ID,
			"trip_id":       trip.ID,
		},
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		log.Warn().
			Err(err).
			Str("invitation_id", inv.ID).
			Msg("Failed to send invitation push")
	}
}

// ListMine returns the pending invitations addressed to the caller
func (s *InvitationService) ListMine(ctx context.Context, userID string) ([]*models.Invitation, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "profile")
	}
	invs, err := s.invitations.ListPendingForEmail(ctx, profile.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invs, nil
}

// Accept adds the caller as a collaborator on the invited trip
func (s *InvitationService) Accept(ctx context.Context, userID, invitationID string) (*models.Invitation, error) {
	inv, err := s.addressedTo(ctx, userID, invitationID)
	if err != nil {
		return nil, err
	}
	if err := s.respond(ctx, inv, models.InvitationAccepted, &userID); err != nil {
		return nil, err
	}
	if err := s.trips.AddCollaborator(ctx, inv.TripID, userID); err != nil {
		return nil, fmt.Errorf("failed to add collaborator: %w", err)
	}

	s.logger.log(ctx, entry{inv.TripID, userID, ActionAccept, EntityInvitation, inv.ID, inv.InviteeEmail})
	s.publisher.PublishChange(inv.TripID, "trip_collaborators", ActionCreate, userID)
	return inv, nil
}

// Decline rejects an invitation addressed to the caller
func (s *InvitationService) Decline(ctx context.Context, userID, invitationID string) (*models.Invitation, error) {
	inv, err := s.addressedTo(ctx, userID, invitationID)
	if err != nil {
		return nil, err
	}
	if err := s.respond(ctx, inv, models.InvitationDeclined, &userID); err != nil {
		return nil, err
	}

	s.logger.log(ctx, entry{inv.TripID, userID, ActionDecline, EntityInvitation, inv.ID, inv.InviteeEmail})
	s.publisher.PublishChange(inv.TripID, "invitations", ActionUpdate, inv.ID)
	return inv, nil
}

// Cancel withdraws a pending invitation. Allowed for the inviter and the trip owner.
func (s *InvitationService) Cancel(ctx context.Context, userID, invitationID string) (*models.Invitation, error) {
	inv, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return nil, storeErr(err, "invitation")
	}
	if inv.InviterID != userID {
		if _, err := authorize(ctx, s.trips, inv.TripID, userID, AccessOwner); err != nil {
			return nil, err
		}
	}
	if err := s.respond(ctx, inv, models.InvitationCanceled, nil); err != nil {
		return nil, err
	}

	s.logger.log(ctx, entry{inv.TripID, userID, ActionCancel, EntityInvitation, inv.ID, inv.InviteeEmail})
	s.publisher.PublishChange(inv.TripID, "invitations", ActionUpdate, inv.ID)
	return inv, nil
}

func (s *InvitationService) addressedTo(ctx context.Context, userID, invitationID string) (*models.Invitation, error) {
	inv, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return nil, storeErr(err, "invitation")
	}
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "profile")
	}
	if !strings.EqualFold(profile.Email, inv.InviteeEmail) {
		return nil, forbidden("invitation is addressed to someone else")
	}
	return inv, nil
}

// respond moves a pending invitation to status
func (s *InvitationService) respond(ctx context.Context, inv *models.Invitation, status string, inviteeID *string) error {
	if inv.Status != models.InvitationPending {
		return conflict("invitation is already " + inv.Status)
	}
	at := s.now()
	if err := s.invitations.Respond(ctx, inv.ID, status, inviteeID, at); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return conflict("invitation is no longer pending")
		}
		return fmt.Errorf("failed to update invitation: %w", err)
	}
	inv.Status = status
	inv.InviteeID = inviteeID
	inv.RespondedAt = &at
	return nil
}
