package services

import (
	"context"
	"fmt"
	"time"

	"tripshare-backend/internal/models"
	"tripshare-backend/internal/repository"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const recentSignupWindow = 7 * 24 * time.Hour

// AdminService handles moderation and the analytics dashboard
type AdminService struct {
	analytics AnalyticsStore
	profiles  ProfileStore
	posts     *PostService
	sessions  UserEvictor
	now       func() time.Time
}

// NewAdminService creates a new admin service. sessions may be nil; when set,
// banned users lose their live connections.
func NewAdminService(analytics AnalyticsStore, profiles ProfileStore, posts *PostService, sessions UserEvictor) *AdminService {
	return &AdminService{
		analytics: analytics,
		profiles:  profiles,
		posts:     posts,
		sessions:  sessions,
		now:       time.Now,
	}
}

// Analytics gathers dashboard counts, one concurrent query per count
func (s *AdminService) Analytics(ctx context.Context) (*models.Analytics, error) {
	now := s.now()
	out := &models.Analytics{GeneratedAt: now}

	counts := []struct {
		metric repository.Metric
		dst    *int
	}{
		{repository.MetricProfiles, &out.Profiles},
		{repository.MetricTrips, &out.Trips},
		{repository.MetricPublicGuides, &out.PublicGuides},
		{repository.MetricPosts, &out.Posts},
		{repository.MetricComments, &out.Comments},
		{repository.MetricExpenses, &out.Expenses},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range counts {
		g.Go(func() error {
			n, err := s.analytics.Count(gctx, c.metric)
			if err != nil {
				return fmt.Errorf("failed to count %s: %w", c.metric, err)
			}
			*c.dst = n
			return nil
		})
	}
	g.Go(func() error {
		n, err := s.analytics.SignupsSince(gctx, now.Add(-recentSignupWindow))
		if err != nil {
			return fmt.Errorf("failed to count recent signups: %w", err)
		}
		out.RecentSignups = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// SetBanned bans or unbans a profile. Admins cannot ban themselves.
func (s *AdminService) SetBanned(ctx context.Context, adminID, userID string, banned bool) (*models.Profile, error) {
	if adminID == userID {
		return nil, invalid("user_id", "cannot ban yourself")
	}
	if err := s.profiles.SetBanned(ctx, userID, banned); err != nil {
		return nil, storeErr(err, "profile")
	}
	p, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "profile")
	}
	if banned && s.sessions != nil {
		s.sessions.EvictUser(userID)
	}

	log.Info().
		Str("admin_id", adminID).
		Str("user_id", userID).
		Bool("banned", banned).
		Msg("Profile ban updated")
	return p, nil
}

// DeletePost removes any post
func (s *AdminService) DeletePost(ctx context.Context, adminID, postID string) error {
	return s.posts.Delete(ctx, adminID, postID, true)
}
