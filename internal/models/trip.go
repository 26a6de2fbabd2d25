package models

import "time"

// Trip represents a planned journey owned by a user
type Trip struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"owner_id"`
	Title         string     `json:"title"`
	Destination   string     `json:"destination"`
	Description   string     `json:"description"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	Interests     []string   `json:"interests"`
	Latitude      *float64   `json:"latitude,omitempty"`
	Longitude     *float64   `json:"longitude,omitempty"`
	CoverImageURL string     `json:"cover_image_url"`
	IsPublic      bool       `json:"is_public"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Days returns the inclusive number of days covered by the trip, or 0 when
// either date is missing
func (t *Trip) Days() int {
	if t.StartDate == nil || t.EndDate == nil {
		return 0
	}
	return int(t.EndDate.Sub(*t.StartDate).Hours()/24) + 1
}

// Invitation statuses
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
	InvitationCanceled = "canceled"
)

// Invitation is a request for another user to collaborate on a trip
type Invitation struct {
	ID           string     `json:"id"`
	TripID       string     `json:"trip_id"`
	InviterID    string     `json:"inviter_id"`
	InviteeEmail string     `json:"invitee_email"`
	InviteeID    *string    `json:"invitee_id,omitempty"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	RespondedAt  *time.Time `json:"responded_at,omitempty"`
}

// ActivityLog is an audit trail entry for a change on a trip
type ActivityLog struct {
	ID         string    `json:"id"`
	TripID     string    `json:"trip_id"`
	ActorID    string    `json:"actor_id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Summary    string    `json:"summary"`
	CreatedAt  time.Time `json:"created_at"`
}
