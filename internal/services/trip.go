package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tripshare-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	maxTitleLength     = 200
	defaultGuidesLimit = 20
	maxPageLimit       = 100
	defaultLogLimit    = 50
)

// Access levels on a trip
type Access int

const (
	// AccessRead allows viewing a trip and its contents
	AccessRead Access = iota
	// AccessEdit allows changing itinerary, ideas, expenses and photos
	AccessEdit
	// AccessOwner allows deleting, sharing and inviting
	AccessOwner
)

// TripService handles trip business logic
type TripService struct {
	trips     TripStore
	photos    PhotoStore
	objects   ObjectStore
	logger    *ActivityLogger
	publisher ChangePublisher
	now       func() time.Time
}

// NewTripService creates a new trip service
func NewTripService(trips TripStore, photos PhotoStore, objects ObjectStore, logger *ActivityLogger, publisher ChangePublisher) *TripService {
	return &TripService{
		trips:     trips,
		photos:    photos,
		objects:   objects,
		logger:    logger,
		publisher: publisherOrNop(publisher),
		now:       time.Now,
	}
}

// TripInput carries trip fields. Dates use YYYY-MM-DD. On update nil fields
// are left unchanged.
type TripInput struct {
	Title         *string   `json:"title"`
	Destination   *string   `json:"destination"`
	Description   *string   `json:"description"`
	StartDate     *string   `json:"start_date"`
	EndDate       *string   `json:"end_date"`
	Interests     *[]string `json:"interests"`
	Latitude      *float64  `json:"latitude"`
	Longitude     *float64  `json:"longitude"`
	CoverImageURL *string   `json:"cover_image_url"`
}

// authorize loads a trip and checks that userID holds the required access
func authorize(ctx context.Context, trips TripStore, tripID, userID string, need Access) (*models.Trip, error) {
	trip, err := trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, storeErr(err, "trip")
	}
	if trip.OwnerID == userID {
		return trip, nil
	}
	if need == AccessOwner {
		return nil, forbidden("only the trip owner can do this")
	}

	member, err := trips.IsCollaborator(ctx, tripID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check collaborator: %w", err)
	}
	if member {
		return trip, nil
	}
	if need == AccessRead && trip.IsPublic {
		return trip, nil
	}
	return nil, forbidden("no access to this trip")
}

// Authorize checks that userID holds the required access to a trip
func (s *TripService) Authorize(ctx context.Context, userID, tripID string, need Access) (*models.Trip, error) {
	return authorize(ctx, s.trips, tripID, userID, need)
}

// Create creates a new trip owned by userID
func (s *TripService) Create(ctx context.Context, userID string, in TripInput) (*models.Trip, error) {
	now := s.now()
	trip := &models.Trip{
		ID:        uuid.New().String(),
		OwnerID:   userID,
		Interests: []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := applyTripInput(trip, in); err != nil {
		return nil, err
	}
	if err := validateTrip(trip); err != nil {
		return nil, err
	}

	if err := s.trips.Create(ctx, trip); err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}

	s.logger.log(ctx, entry{trip.ID, userID, ActionCreate, EntityTrip, trip.ID, trip.Title})
	log.Info().Str("trip_id", trip.ID).Str("user_id", userID).Msg("Trip created")
	return trip, nil
}

// Get returns a trip the caller may read
func (s *TripService) Get(ctx context.Context, userID, tripID string) (*models.Trip, error) {
	return authorize(ctx, s.trips, tripID, userID, AccessRead)
}

// List returns the trips the caller owns or collaborates on
func (s *TripService) List(ctx context.Context, userID string) ([]*models.Trip, error) {
	trips, err := s.trips.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	return trips, nil
}

// ListGuides returns public trips, newest first
func (s *TripService) ListGuides(ctx context.Context, limit, offset int) ([]*models.Trip, int, error) {
	limit, offset = clampPage(limit, offset, defaultGuidesLimit)
	trips, total, err := s.trips.ListPublic(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list guides: %w", err)
	}
	return trips, total, nil
}

// Update applies a partial update to a trip
func (s *TripService) Update(ctx context.Context, userID, tripID string, in TripInput) (*models.Trip, error) {
	trip, err := authorize(ctx, s.trips, tripID, userID, AccessEdit)
	if err != nil {
		return nil, err
	}
	if err := applyTripInput(trip, in); err != nil {
		return nil, err
	}
	if err := validateTrip(trip); err != nil {
		return nil, err
	}
	trip.UpdatedAt = s.now()

	if err := s.trips.Update(ctx, trip); err != nil {
		return nil, storeErr(err, "trip")
	}

	s.logger.log(ctx, entry{trip.ID, userID, ActionUpdate, EntityTrip, trip.ID, trip.Title})
	s.publisher.PublishChange(trip.ID, "trips", ActionUpdate, trip.ID)
	return trip, nil
}

// Share toggles whether the trip is listed as a public guide
func (s *TripService) Share(ctx context.Context, userID, tripID string, public bool) (*models.Trip, error) {
	trip, err := authorize(ctx, s.trips, tripID, userID, AccessOwner)
	if err != nil {
		return nil, err
	}
	trip.IsPublic = public
	trip.UpdatedAt = s.now()

	if err := s.trips.Update(ctx, trip); err != nil {
		return nil, storeErr(err, "trip")
	}

	summary := "made private"
	if public {
		summary = "shared as guide"
	}
	s.logger.log(ctx, entry{trip.ID, userID, ActionShare, EntityTrip, trip.ID, summary})
	s.publisher.PublishChange(trip.ID, "trips", ActionUpdate, trip.ID)
	return trip, nil
}

// Delete removes a trip and the stored objects of its photos
func (s *TripService) Delete(ctx context.Context, userID, tripID string) error {
	if _, err := authorize(ctx, s.trips, tripID, userID, AccessOwner); err != nil {
		return err
	}

	keys, err := s.photos.StorageKeysByTrip(ctx, tripID)
	if err != nil {
		return fmt.Errorf("failed to list trip photos: %w", err)
	}

	if err := s.trips.Delete(ctx, tripID); err != nil {
		return storeErr(err, "trip")
	}

	if len(keys) > 0 {
		if err := s.objects.Delete(ctx, keys...); err != nil {
			log.Error().
				Err(err).
				Str("trip_id", tripID).
				Int("objects", len(keys)).
				Msg("Failed to delete trip photo objects")
		}
	}

	s.publisher.PublishChange(tripID, "trips", ActionDelete, tripID)
	log.Info().Str("trip_id", tripID).Str("user_id", userID).Msg("Trip deleted")
	return nil
}

// Members returns the owner and collaborators of a trip
func (s *TripService) Members(ctx context.Context, userID, tripID string) ([]string, error) {
	if _, err := authorize(ctx, s.trips, tripID, userID, AccessRead); err != nil {
		return nil, err
	}
	members, err := s.trips.ListMembers(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// RemoveCollaborator removes memberID from a trip. The owner may remove anyone;
// a collaborator may only remove themselves.
func (s *TripService) RemoveCollaborator(ctx context.Context, userID, tripID, memberID string) error {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return storeErr(err, "trip")
	}
	if memberID == trip.OwnerID {
		return invalid("user_id", "is the trip owner")
	}
	if userID != trip.OwnerID && userID != memberID {
		return forbidden("only the trip owner can remove collaborators")
	}

	if err := s.trips.RemoveCollaborator(ctx, tripID, memberID); err != nil {
		return storeErr(err, "collaborator")
	}

	s.logger.log(ctx, entry{tripID, userID, ActionDelete, EntityMember, memberID, "collaborator removed"})
	s.publisher.PublishChange(tripID, "trip_collaborators", ActionDelete, memberID)
	if ev, ok := s.publisher.(TripEvictor); ok {
		ev.Evict(tripID, memberID)
	}
	return nil
}

// ActivityLog returns the newest activity log entries of a trip
func (s *TripService) ActivityLog(ctx context.Context, userID, tripID string, limit int) ([]*models.ActivityLog, error) {
	if _, err := authorize(ctx, s.trips, tripID, userID, AccessEdit); err != nil {
		return nil, err
	}
	limit, _ = clampPage(limit, 0, defaultLogLimit)
	entries, err := s.logger.list(ctx, tripID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity log: %w", err)
	}
	return entries, nil
}

func applyTripInput(t *models.Trip, in TripInput) error {
	if in.Title != nil {
		t.Title = strings.TrimSpace(*in.Title)
	}
	if in.Destination != nil {
		t.Destination = strings.TrimSpace(*in.Destination)
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.StartDate != nil {
		d, err := parseDate("start_date", *in.StartDate)
		if err != nil {
			return err
		}
		t.StartDate = d
	}
	if in.EndDate != nil {
		d, err := parseDate("end_date", *in.EndDate)
		if err != nil {
			return err
		}
		t.EndDate = d
	}
	if in.Interests != nil {
		t.Interests = normalizeTags(*in.Interests)
	}
	if in.Latitude != nil {
		t.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		t.Longitude = in.Longitude
	}
	if in.CoverImageURL != nil {
		t.CoverImageURL = strings.TrimSpace(*in.CoverImageURL)
	}
	return nil
}

func validateTrip(t *models.Trip) error {
	if t.Title == "" {
		return invalid("title", "is required")
	}
	if len([]rune(t.Title)) > maxTitleLength {
		return invalid("title", fmt.Sprintf("must be at most %d characters", maxTitleLength))
	}
	if t.Destination == "" {
		return invalid("destination", "is required")
	}
	if t.StartDate != nil && t.EndDate != nil && t.EndDate.Before(*t.StartDate) {
		return invalid("end_date", "must not be before start_date")
	}
	if t.Latitude != nil && (*t.Latitude < -90 || *t.Latitude > 90) {
		return invalid("latitude", "must be between -90 and 90")
	}
	if t.Longitude != nil && (*t.Longitude < -180 || *t.Longitude > 180) {
		return invalid("longitude", "must be between -180 and 180")
	}
	return nil
}

// parseDate parses YYYY-MM-DD; an empty string clears the date
func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	d, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, invalid(field, "must be a date in YYYY-MM-DD format")
	}
	return &d, nil
}

// normalizeTags lowercases, trims and deduplicates tags, keeping first-seen order
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func clampPage(limit, offset, def int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
