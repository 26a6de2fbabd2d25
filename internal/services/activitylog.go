package services

import (
	"context"
	"time"

	"tripshare-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Actions recorded in the trip activity log
const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionShare   = "share"
	ActionInvite  = "invite"
	ActionAccept  = "accept"
	ActionDecline = "decline"
	ActionCancel  = "cancel"
	ActionUpload  = "upload"
	ActionPromote = "promote"
	ActionReorder = "reorder"
)

// Entity types recorded in the trip activity log
const (
	EntityTrip       = "trip"
	EntityActivity   = "activity"
	EntityIdea       = "idea"
	EntityExpense    = "expense"
	EntitySettlement = "settlement"
	EntityPhoto      = "photo"
	EntityInvitation = "invitation"
	EntityMember     = "member"
)

// ActivityLogger records trip mutations. Failures are logged and swallowed.
type ActivityLogger struct {
	store ActivityLogStore
	now   func() time.Time
}

// NewActivityLogger creates a new activity logger. A nil store disables logging.
func NewActivityLogger(store ActivityLogStore) *ActivityLogger {
	return &ActivityLogger{store: store, now: time.Now}
}

// entry describes one logged mutation
type entry struct {
	tripID     string
	actorID    string
	action     string
	entityType string
	entityID   string
	summary    string
}

func (l *ActivityLogger) log(ctx context.Context, e entry) {
	if l == nil || l.store == nil {
		return
	}
	rec := &models.ActivityLog{
		ID:         uuid.New().String(),
		TripID:     e.tripID,
		ActorID:    e.actorID,
		Action:     e.action,
		EntityType: e.entityType,
		EntityID:   e.entityID,
		Summary:    e.summary,
		CreatedAt:  l.now(),
	}
	if err := l.store.Create(ctx, rec); err != nil {
		log.Warn().
			Err(err).
			Str("trip_id", e.tripID).
			Str("action", e.action).
			Str("entity_type", e.entityType).
			Msg("Failed to record activity log")
	}
}

func (l *ActivityLogger) list(ctx context.Context, tripID string, limit int) ([]*models.ActivityLog, error) {
	if l == nil || l.store == nil {
		return []*models.ActivityLog{}, nil
	}
	return l.store.ListByTrip(ctx, tripID, limit)
}
