package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tripshare-backend/internal/linkpreview"
	"tripshare-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// IdeaService handles the trip idea board
type IdeaService struct {
	ideas      IdeaStore
	activities ActivityStore
	trips      TripStore
	previewer  LinkPreviewer
	logger     *ActivityLogger
	publisher  ChangePublisher
	now        func() time.Time
}

// NewIdeaService creates a new idea service. A nil previewer skips link previews.
func NewIdeaService(ideas IdeaStore, activities ActivityStore, trips TripStore, previewer LinkPreviewer, logger *ActivityLogger, publisher ChangePublisher) *IdeaService {
	return &IdeaService{
		ideas:      ideas,
		activities: activities,
		trips:      trips,
		previewer:  previewer,
		logger:     logger,
		publisher:  publisherOrNop(publisher),
		now:        time.Now,
	}
}

// IdeaInput carries idea fields. On update nil fields are left unchanged.
type IdeaInput struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	URL         *string              `json:"url"`
	Type        *models.ActivityType `json:"type"`
	Tags        *[]string            `json:"tags"`
}

// PromoteInput places a promoted idea in the itinerary
type PromoteInput struct {
	Day    int                 `json:"day"`
	Period models.TimePeriod   `json:"period"`
	Type   models.ActivityType `json:"type"`
}

// List returns the ideas of a trip, newest first
func (s *IdeaService) List(ctx context.Context, userID, tripID string) ([]*models.Idea, error) {
	if _, err := authorize(ctx, s.trips, tripID, userID, AccessRead); err != nil {
		return nil, err
	}
	ideas, err := s.ideas.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}
	return ideas, nil
}

// Create adds an idea, fetching a link preview when a URL is present
func (s *IdeaService) Create(ctx context.Context, userID, tripID string, in IdeaInput) (*models.Idea, error) {
	if _, err := authorize(ctx, s.trips, tripID, userID, AccessEdit); err != nil {
		return nil, err
	}

	now := s.now()
	idea := &models.Idea{
		ID:        uuid.New().String(),
		TripID:    tripID,
		CreatedBy: userID,
		Type:      models.TypeOther,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := applyIdeaInput(idea, in); err != nil {
		return nil, err
	}
	s.refreshPreview(ctx, idea)

	if err := s.ideas.Create(ctx, idea); err != nil {
		return nil, fmt.Errorf("failed to create idea: %w", err)
	}

	s.logger.log(ctx, entry{tripID, userID, ActionCreate, EntityIdea, idea.ID, idea.Title})
	s.publisher.PublishChange(tripID, "ideas", ActionCreate, idea.ID)
	return idea, nil
}

// Update applies a partial update to an idea. The preview is refetched when
// the link changes.
func (s *IdeaService) Update(ctx context.Context, userID, tripID, ideaID string, in IdeaInput) (*models.Idea, error) {
	idea, err := s.load(ctx, userID, tripID, ideaID)
	if err != nil {
		return nil, err
	}

	before := ideaLink(idea)
	if err := applyIdeaInput(idea, in); err != nil {
		return nil, err
	}
	if ideaLink(idea) != before || idea.Preview == nil {
		s.refreshPreview(ctx, idea)
	}
	idea.UpdatedAt = s.now()

	if err := s.ideas.Update(ctx, idea); err != nil {
		return nil, storeErr(err, "idea")
	}

	s.logger.log(ctx, entry{tripID, userID, ActionUpdate, EntityIdea, idea.ID, idea.Title})
	s.publisher.PublishChange(tripID, "ideas", ActionUpdate, idea.ID)
	return idea, nil
}

// Delete removes an idea
func (s *IdeaService) Delete(ctx context.Context, userID, tripID, ideaID string) error {
	idea, err := s.load(ctx, userID, tripID, ideaID)
	if err != nil {
		return err
	}
	if err := s.ideas.Delete(ctx, idea.ID); err != nil {
		return storeErr(err, "idea")
	}

	s.logger.log(ctx, entry{tripID, userID, ActionDelete, EntityIdea, idea.ID, idea.Title})
	s.publisher.PublishChange(tripID, "ideas", ActionDelete, idea.ID)
	return nil
}

// Promote turns an idea into an itinerary activity and removes the idea
func (s *IdeaService) Promote(ctx context.Context, userID, tripID, ideaID string, in PromoteInput) (*models.Activity, error) {
	idea, err := s.load(ctx, userID, tripID, ideaID)
	if err != nil {
		return nil, err
	}

	if in.Day == 0 {
		in.Day = 1
	}
	if in.Period == "" {
		in.Period = models.PeriodMorning
	}
	if in.Type == "" {
		in.Type = idea.Type
	}

	now := s.now()
	a := &models.Activity{
		ID:        uuid.New().String(),
		TripID:    tripID,
		Day:       in.Day,
		Period:    in.Period,
		Type:      in.Type,
		Title:     idea.Title,
		Notes:     promotedNotes(idea),
		CreatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := validateActivity(a); err != nil {
		return nil, err
	}

	idx, err := s.activities.NextOrderIndex(ctx, tripID, a.Day, a.Period)
	if err != nil {
		return nil, fmt.Errorf("failed to get next order index: %w", err)
	}
	a.OrderIndex = idx
	a.Badge = a.Type.Badge()

	if err := s.ideas.Promote(ctx, idea.ID, a); err != nil {
		return nil, storeErr(err, "idea")
	}

	s.logger.log(ctx, entry{tripID, userID, ActionPromote, EntityIdea, idea.ID, idea.Title})
	s.publisher.PublishChange(tripID, "ideas", ActionDelete, idea.ID)
	s.publisher.PublishChange(tripID, "activities", ActionCreate, a.ID)
	return a, nil
}

func (s *IdeaService) load(ctx context.Context, userID, tripID, ideaID string) (*models.Idea, error) {
	if _, err := authorize(ctx, s.trips, tripID, userID, AccessEdit); err != nil {
		return nil, err
	}
	idea, err := s.ideas.GetByID(ctx, ideaID)
	if err != nil {
		return nil, storeErr(err, "idea")
	}
	if idea.TripID != tripID {
		return nil, fmt.Errorf("idea %w", ErrNotFound)
	}
	return idea, nil
}

// refreshPreview fetches metadata for the idea's link. Failures leave the
// preview empty.
func (s *IdeaService) refreshPreview(ctx context.Context, idea *models.Idea) {
	link := ideaLink(idea)
	if link == "" {
		idea.Preview = nil
		return
	}
	if s.previewer == nil {
		idea.Preview = &models.LinkPreview{URL: link}
		return
	}

	ctx, cancel := context.WithTimeout(ctx, linkpreview.DefaultTimeout)
	defer cancel()

	preview, err := s.previewer.Fetch(ctx, link)
	if err != nil {
		log.Debug().Err(err).Str("url", link).Msg("Link preview failed")
		idea.Preview = &models.LinkPreview{URL: link}
		return
	}
	idea.Preview = preview
	if idea.Title == "" && preview.Title != "" {
		idea.Title = preview.Title
	}
}

// ideaLink is the explicit URL or the first URL found in the description
func ideaLink(idea *models.Idea) string {
	if idea.URL != "" {
		return idea.URL
	}
	return linkpreview.FirstURL(idea.Description)
}

func applyIdeaInput(idea *models.Idea, in IdeaInput) error {
	if in.Title != nil {
		idea.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		idea.Description = *in.Description
	}
	if in.URL != nil {
		u := strings.TrimSpace(*in.URL)
		if u != "" && !linkpreview.IsURL(u) {
			return invalid("url", "must be an http or https URL")
		}
		idea.URL = u
	}
	if in.Type != nil {
		t := models.ActivityType(strings.ToLower(string(*in.Type)))
		if !t.Valid() {
			return invalid("type", "is not a known activity type")
		}
		idea.Type = t
	}
	if in.Tags != nil {
		idea.Tags = normalizeTags(*in.Tags)
	}
	if idea.Title == "" && ideaLink(idea) == "" {
		return invalid("title", "is required when no link is given")
	}
	return nil
}

func promotedNotes(idea *models.Idea) string {
	notes := strings.TrimSpace(idea.Description)
	if idea.URL != "" && !strings.Contains(notes, idea.URL) {
		if notes != "" {
			notes += "\n"
		}
		notes += idea.URL
	}
	return notes
}
