package services

import (
	"context"
	"fmt"
	"strings"

	"tripshare-backend/internal/models"
	"tripshare-backend/internal/storage"

	"github.com/google/uuid"
)

const (
	maxDisplayNameLength = 80
	maxBioLength         = 500
)

// ProfileService handles profile reads, edits and avatar uploads
type ProfileService struct {
	profiles ProfileStore
	objects  ObjectStore
	limits   UploadLimits
}

// NewProfileService creates a new profile service
func NewProfileService(profiles ProfileStore, objects ObjectStore, limits UploadLimits) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		objects:  objects,
		limits:   limitsOrDefault(limits),
	}
}

// ProfileUpdate carries the editable profile fields; nil fields are left alone
type ProfileUpdate struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatar_url"`
	PushToken   *string `json:"push_token"`
}

// Get returns a profile by ID
func (s *ProfileService) Get(ctx context.Context, id string) (*models.Profile, error) {
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "profile")
	}
	return p, nil
}

// Update applies a partial update to the caller's profile
func (s *ProfileService) Update(ctx context.Context, userID string, upd ProfileUpdate) (*models.Profile, error) {
	p, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "profile")
	}

	if upd.DisplayName != nil {
		name := strings.TrimSpace(*upd.DisplayName)
		if name == "" || len([]rune(name)) > maxDisplayNameLength {
			return nil, invalid("display_name", fmt.Sprintf("must be 1 to %d characters", maxDisplayNameLength))
		}
		p.DisplayName = name
	}
	if upd.Bio != nil {
		if len([]rune(*upd.Bio)) > maxBioLength {
			return nil, invalid("bio", fmt.Sprintf("must be at most %d characters", maxBioLength))
		}
		p.Bio = *upd.Bio
	}
	if upd.AvatarURL != nil {
		p.AvatarURL = strings.TrimSpace(*upd.AvatarURL)
	}
	if upd.PushToken != nil {
		token := strings.TrimSpace(*upd.PushToken)
		if token == "" {
			p.PushToken = nil
		} else {
			p.PushToken = &token
		}
	}

	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, storeErr(err, "profile")
	}
	return p, nil
}

// PresignAvatar returns a presigned upload for a new avatar image. The client
// stores the returned object URL with Update once the PUT succeeds.
func (s *ProfileService) PresignAvatar(ctx context.Context, userID string, req UploadRequest) (*UploadResponse, error) {
	if err := req.normalize(s.limits); err != nil {
		return nil, err
	}
	key := storage.Key("avatars", userID, uuid.New().String(), req.ContentType)
	return presign(ctx, s.objects, s.limits, key, req)
}

func loadSummaries(ctx context.Context, profiles ProfileStore, ids []string) (map[string]*models.ProfileSummary, error) {
	out := make(map[string]*models.ProfileSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	list, err := profiles.GetByIDs(ctx, uniqueStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	for _, p := range list {
		summary := p.Summary()
		out[p.ID] = &summary
	}
	return out, nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
