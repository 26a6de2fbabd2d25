package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"tripshare-backend/internal/collections"
	"tripshare-backend/internal/models"
	"tripshare-backend/internal/repository"

	"github.com/google/uuid"
)

// ActivityService handles itinerary business logic
type ActivityService struct {
	activities ActivityStore
	trips      TripStore
	logger     *ActivityLogger
	publisher  ChangePublisher
	now        func() time.Time
}

// NewActivityService creates a new activity service
func NewActivityService(activities ActivityStore, trips TripStore, logger *ActivityLogger, publisher ChangePublisher) *ActivityService {
	return &ActivityService{
		activities: activities,
		trips:      trips,
		logger:     logger,
		publisher:  publisherOrNop(publisher),
		now:        time.Now,
	}
}

// ActivityInput carries activity fields. On update nil fields are left unchanged.
type ActivityInput struct {
	Day       *int                 `json:"day"`
	Period    *models.TimePeriod   `json:"period"`
	Type      *models.ActivityType `json:"type"`
	Title     *string              `json:"title"`
	Notes     *string              `json:"notes"`
	Location  *string              `json:"location"`
	StartTime *string              `json:"start_time"`
	Cost      *float64             `json:"cost"`
}

// List returns the itinerary of a trip grouped by day
func (s *ActivityService) List(ctx context.Context, userID, tripID string) ([]*models.ItineraryDay, error) {
	if _, err := authorize(ctx, s.trips, tripID, userID, AccessRead); err != nil {
		return nil, err
	}
	list, err := s.activities.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return GroupByDay(list), nil
}

// Create adds an activity at the end of its day and period
func (s *ActivityService) Create(ctx context.Context, userID, tripID string, in ActivityInput) (*models.Activity, error) {
	if _, err := authorize(ctx, s.trips, tripID, userID, AccessEdit); err != nil {
		return nil, err
	}

	now := s.now()
	a := &models.Activity{
		ID:        uuid.New().String(),
		TripID:    tripID,
		Day:       1,
		Period:    models.PeriodMorning,
		Type:      models.TypeOther,
		CreatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyActivityInput(a, in)
	if err := validateActivity(a); err != nil {
		return nil, err
	}

	idx, err := s.activities.NextOrderIndex(ctx, tripID, a.Day, a.Period)
	if err != nil {
		return nil, fmt.Errorf("failed to get next order index: %w", err)
	}
	a.OrderIndex = idx
	a.Badge = a.Type.Badge()

	if err := s.activities.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	s.logger.log(ctx, entry{tripID, userID, ActionCreate, EntityActivity, a.ID, a.Title})
	s.publisher.PublishChange(tripID, "activities", ActionCreate, a.ID)
	return a, nil
}

// Update applies a partial update to an activity
func (s *ActivityService) Update(ctx context.Context, userID, tripID, activityID string, in ActivityInput) (*models.Activity, error) {
	a, err := s.load(ctx, userID, tripID, activityID)
	if err != nil {
		return nil, err
	}

	moved := (in.Day != nil && *in.Day != a.Day) || (in.Period != nil && *in.Period != a.Period)
	applyActivityInput(a, in)
	if err := validateActivity(a); err != nil {
		return nil, err
	}
	if moved {
		idx, err := s.activities.NextOrderIndex(ctx, tripID, a.Day, a.Period)
		if err != nil {
			return nil, fmt.Errorf("failed to get next order index: %w", err)
		}
		a.OrderIndex = idx
	}
	a.Badge = a.Type.Badge()
	a.UpdatedAt = s.now()

	if err := s.activities.Update(ctx, a); err != nil {
		return nil, storeErr(err, "activity")
	}

	s.logger.log(ctx, entry{tripID, userID, ActionUpdate, EntityActivity, a.ID, a.Title})
	s.publisher.PublishChange(tripID, "activities", ActionUpdate, a.ID)
	return a, nil
}

// Delete removes an activity
func (s *ActivityService) Delete(ctx context.Context, userID, tripID, activityID string) error {
	a, err := s.load(ctx, userID, tripID, activityID)
	if err != nil {
		return err
	}
	if err := s.activities.Delete(ctx, a.ID); err != nil {
		return storeErr(err, "activity")
	}

	s.logger.log(ctx, entry{tripID, userID, ActionDelete, EntityActivity, a.ID, a.Title})
	s.publisher.PublishChange(tripID, "activities", ActionDelete, a.ID)
	return nil
}

// Reorder sets order_index to the position of each ID in ids. Every ID must
// belong to the trip and appear once; activities not listed keep their index.
func (s *ActivityService) Reorder(ctx context.Context, userID, tripID string, ids []string) ([]*models.ItineraryDay, error) {
	if _, err := authorize(ctx, s.trips, tripID, userID, AccessEdit); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, invalid("ids", "must not be empty")
	}

	list, err := s.activities.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	byID := collections.IndexByID(list)

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, invalid("ids", "contains duplicate id "+id)
		}
		seen[id] = struct{}{}
		if _, ok := byID[id]; !ok {
			return nil, invalid("ids", "contains id "+id+" not on this trip")
		}
	}

	if err := s.activities.Reorder(ctx, tripID, ids); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid("ids", "contains an activity that no longer exists")
		}
		return nil, fmt.Errorf("failed to reorder activities: %w", err)
	}

	for i, id := range ids {
		updated := *byID[id]
		updated.OrderIndex = i
		list = collections.MergeByID(list, &updated)
	}

	s.logger.log(ctx, entry{tripID, userID, ActionReorder, EntityActivity, "", fmt.Sprintf("%d activities", len(ids))})
	s.publisher.PublishChange(tripID, "activities", ActionUpdate, "")
	return GroupByDay(list), nil
}

func (s *ActivityService) load(ctx context.Context, userID, tripID, activityID string) (*models.Activity, error) {
	if _, err := authorize(ctx, s.trips, tripID, userID, AccessEdit); err != nil {
		return nil, err
	}
	a, err := s.activities.GetByID(ctx, activityID)
	if err != nil {
		return nil, storeErr(err, "activity")
	}
	if a.TripID != tripID {
		return nil, fmt.Errorf("activity %w", ErrNotFound)
	}
	return a, nil
}

// GroupByDay groups activities by day, ordering each day by period then
// order_index. Days are ascending and only days with activities appear.
func GroupByDay(list []*models.Activity) []*models.ItineraryDay {
	sorted := make([]*models.Activity, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.Period.Rank() != b.Period.Rank() {
			return a.Period.Rank() < b.Period.Rank()
		}
		if a.OrderIndex != b.OrderIndex {
			return a.OrderIndex < b.OrderIndex
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	days := []*models.ItineraryDay{}
	for _, a := range sorted {
		a.Badge = a.Type.Badge()
		if n := len(days); n == 0 || days[n-1].Day != a.Day {
			days = append(days, &models.ItineraryDay{Day: a.Day})
		}
		last := days[len(days)-1]
		last.Activities = append(last.Activities, a)
	}
	return days
}

func applyActivityInput(a *models.Activity, in ActivityInput) {
	if in.Day != nil {
		a.Day = *in.Day
	}
	if in.Period != nil {
		a.Period = models.TimePeriod(strings.ToLower(string(*in.Period)))
	}
	if in.Type != nil {
		a.Type = models.ActivityType(strings.ToLower(string(*in.Type)))
	}
	if in.Title != nil {
		a.Title = strings.TrimSpace(*in.Title)
	}
	if in.Notes != nil {
		a.Notes = *in.Notes
	}
	if in.Location != nil {
		a.Location = strings.TrimSpace(*in.Location)
	}
	if in.StartTime != nil {
		a.StartTime = strings.TrimSpace(*in.StartTime)
	}
	if in.Cost != nil {
		a.Cost = in.Cost
	}
}

func validateActivity(a *models.Activity) error {
	if a.Title == "" {
		return invalid("title", "is required")
	}
	if a.Day < 1 {
		return invalid("day", "must be at least 1")
	}
	if !a.Period.Valid() {
		return invalid("period", "must be morning, afternoon or evening")
	}
	if !a.Type.Valid() {
		return invalid("type", "is not a known activity type")
	}
	if a.StartTime != "" {
		if _, err := time.Parse("15:04", a.StartTime); err != nil {
			return invalid("start_time", "must be HH:MM")
		}
	}
	if a.Cost != nil && *a.Cost < 0 {
		return invalid("cost", "must not be negative")
	}
	return nil
}
