package services

import (
	"context"
	"time"

	"tripshare-backend/internal/models"
	"tripshare-backend/internal/notify"
	"tripshare-backend/internal/repository"
)

// ProfileStore persists profiles and password reset tokens
type ProfileStore interface {
	Create(ctx context.Context, p *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Profile, error)
	Update(ctx context.Context, p *models.Profile) error
	UpdatePassword(ctx context.Context, id, hash string) error
	SetBanned(ctx context.Context, id string, banned bool) error
	CreateResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time) (string, error)
}

// TripStore persists trips and their collaborators
type TripStore interface {
	Create(ctx context.Context, t *models.Trip) error
	GetByID(ctx context.Context, id string) (*models.Trip, error)
	Update(ctx context.Context, t *models.Trip) error
	Delete(ctx context.Context, id string) error
	ListForUser(ctx context.Context, userID string) ([]*models.Trip, error)
	ListPublic(ctx context.Context, limit, offset int) ([]*models.Trip, int, error)
	IsCollaborator(ctx context.Context, tripID, userID string) (bool, error)
	AddCollaborator(ctx context.Context, tripID, userID string) error
	RemoveCollaborator(ctx context.Context, tripID, userID string) error
	ListMembers(ctx context.Context, tripID string) ([]string, error)
}

// InvitationStore persists collaboration invitations
type InvitationStore interface {
	Create(ctx context.Context, inv *models.Invitation) error
	GetByID(ctx context.Context, id string) (*models.Invitation, error)
	ListPendingForEmail(ctx context.Context, email string) ([]*models.Invitation, error)
	HasPending(ctx context.Context, tripID, email string) (bool, error)
	Respond(ctx context.Context, id, status string, inviteeID *string, at time.Time) error
}

// ActivityStore persists itinerary activities
type ActivityStore interface {
	Create(ctx context.Context, a *models.Activity) error
	GetByID(ctx context.Context, id string) (*models.Activity, error)
	Update(ctx context.Context, a *models.Activity) error
	Delete(ctx context.Context, id string) error
	ListByTrip(ctx context.Context, tripID string) ([]*models.Activity, error)
	NextOrderIndex(ctx context.Context, tripID string, day int, period models.TimePeriod) (int, error)
	Reorder(ctx context.Context, tripID string, ids []string) error
}

// IdeaStore persists ideas
type IdeaStore interface {
	Create(ctx context.Context, i *models.Idea) error
	GetByID(ctx context.Context, id string) (*models.Idea, error)
	Update(ctx context.Context, i *models.Idea) error
	Delete(ctx context.Context, id string) error
	ListByTrip(ctx context.Context, tripID string) ([]*models.Idea, error)
	Promote(ctx context.Context, ideaID string, a *models.Activity) error
}

// ExpenseStore persists expenses and recorded settlements
type ExpenseStore interface {
	Create(ctx context.Context, e *models.Expense) error
	GetByID(ctx context.Context, id string) (*models.Expense, error)
	Update(ctx context.Context, e *models.Expense) error
	Delete(ctx context.Context, id string) error
	ListByTrip(ctx context.Context, tripID string) ([]*models.Expense, error)
	CreateSettlement(ctx context.Context, s *models.Settlement) error
	ListSettlements(ctx context.Context, tripID string) ([]*models.Settlement, error)
}

// PhotoStore persists trip photo records
type PhotoStore interface {
	Create(ctx context.Context, p *models.Photo) error
	GetByID(ctx context.Context, id string) (*models.Photo, error)
	ListByTrip(ctx context.Context, tripID string, limit, offset int) ([]*models.Photo, int, error)
	StorageKeysByTrip(ctx context.Context, tripID string) ([]string, error)
	MarkUploaded(ctx context.Context, photoID string) error
	Delete(ctx context.Context, id string) error
}

// PostStore persists the social feed
type PostStore interface {
	Create(ctx context.Context, p *models.Post) error
	GetByID(ctx context.Context, id, viewerID string) (*models.FeedItem, error)
	Feed(ctx context.Context, viewerID string, limit, offset int) ([]*models.FeedItem, error)
	Bookmarked(ctx context.Context, viewerID string, limit, offset int) ([]*models.FeedItem, error)
	Delete(ctx context.Context, id string) error
	AddImage(ctx context.Context, img *models.PostImage) error
	ImagesByPosts(ctx context.Context, postIDs []string) (map[string][]*models.PostImage, error)
	ToggleLike(ctx context.Context, postID, userID string) (bool, error)
	ToggleBookmark(ctx context.Context, postID, userID string) (bool, error)
	AddComment(ctx context.Context, c *models.Comment) error
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	ListComments(ctx context.Context, postID string) ([]*models.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

// ActivityLogStore persists the trip audit trail
type ActivityLogStore interface {
	Create(ctx context.Context, l *models.ActivityLog) error
	ListByTrip(ctx context.Context, tripID string, limit int) ([]*models.ActivityLog, error)
}

// AnalyticsStore answers admin dashboard counts
type AnalyticsStore interface {
	Count(ctx context.Context, m repository.Metric) (int, error)
	SignupsSince(ctx context.Context, since time.Time) (int, error)
}

// ObjectStore holds uploaded files
type ObjectStore interface {
	PresignUpload(ctx context.Context, key, contentType string, expires time.Duration) (string, error)
	PublicURL(key string) string
	Delete(ctx context.Context, keys ...string) error
}

// Notifier delivers push notifications
type Notifier interface {
	Notify(ctx context.Context, msg notify.Message) error
}

// LinkPreviewer scrapes link metadata
type LinkPreviewer interface {
	Fetch(ctx context.Context, rawURL string) (*models.LinkPreview, error)
}

// ChangePublisher announces row changes to clients watching a trip
type ChangePublisher interface {
	PublishChange(tripID, table, action, id string)
}

// TripEvictor is implemented by publishers that hold live connections. Evict
// disconnects a user from one trip room.
type TripEvictor interface {
	Evict(tripID, userID string) int
}

// UserEvictor disconnects a user from every trip room
type UserEvictor interface {
	EvictUser(userID string) int
}

type nopPublisher struct{}

func (nopPublisher) PublishChange(string, string, string, string) {}

func publisherOrNop(p ChangePublisher) ChangePublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}
