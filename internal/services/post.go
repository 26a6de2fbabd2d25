package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tripshare-backend/internal/models"
	"tripshare-backend/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	defaultFeedLimit = 20
	maxPostLength    = 5000
	maxCommentLength = 2000
)

// PostService handles the social feed
type PostService struct {
	posts    PostStore
	profiles ProfileStore
	trips    TripStore
	objects  ObjectStore
	limits   UploadLimits
	now      func() time.Time
}

// NewPostService creates a new post service
func NewPostService(posts PostStore, profiles ProfileStore, trips TripStore, objects ObjectStore, limits UploadLimits) *PostService {
	return &PostService{
		posts:    posts,
		profiles: profiles,
		trips:    trips,
		objects:  objects,
		limits:   limitsOrDefault(limits),
		now:      time.Now,
	}
}

// PostInput carries the fields of a new post
type PostInput struct {
	Body   string  `json:"body"`
	TripID *string `json:"trip_id"`
}

// Create publishes a post. A linked trip must be one the author can edit.
func (s *PostService) Create(ctx context.Context, userID string, in PostInput) (*models.FeedItem, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, invalid("body", "is required")
	}
	if len([]rune(body)) > maxPostLength {
		return nil, invalid("body", fmt.Sprintf("must be at most %d characters", maxPostLength))
	}

	var tripID *string
	if in.TripID != nil && *in.TripID != "" {
		if _, err := authorize(ctx, s.trips, *in.TripID, userID, AccessEdit); err != nil {
			return nil, err
		}
		tripID = in.TripID
	}

	now := s.now()
	post := &models.Post{
		ID:        uuid.New().String(),
		AuthorID:  userID,
		TripID:    tripID,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return s.Get(ctx, userID, post.ID)
}

// Get returns a single enriched post
func (s *PostService) Get(ctx context.Context, viewerID, postID string) (*models.FeedItem, error) {
	item, err := s.posts.GetByID(ctx, postID, viewerID)
	if err != nil {
		return nil, storeErr(err, "post")
	}
	if err := s.enrich(ctx, []*models.FeedItem{item}); err != nil {
		return nil, err
	}
	return item, nil
}

// Feed returns the newest posts with authors, images and counts
func (s *PostService) Feed(ctx context.Context, viewerID string, limit, offset int) ([]*models.FeedItem, error) {
	limit, offset = clampPage(limit, offset, defaultFeedLimit)
	items, err := s.posts.Feed(ctx, viewerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}
	if err := s.enrich(ctx, items); err != nil {
		return nil, err
	}
	return nonNil(items), nil
}

// Bookmarks returns the posts the viewer bookmarked
func (s *PostService) Bookmarks(ctx context.Context, viewerID string, limit, offset int) ([]*models.FeedItem, error) {
	limit, offset = clampPage(limit, offset, defaultFeedLimit)
	items, err := s.posts.Bookmarked(ctx, viewerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmarks: %w", err)
	}
	if err := s.enrich(ctx, items); err != nil {
		return nil, err
	}
	return nonNil(items), nil
}

// enrich attaches authors and images. Both lookups are batched and run concurrently.
func (s *PostService) enrich(ctx context.Context, items []*models.FeedItem) error {
	if len(items) == 0 {
		return nil
	}
	postIDs := make([]string, len(items))
	authorIDs := make([]string, len(items))
	for i, it := range items {
		postIDs[i] = it.ID
		authorIDs[i] = it.AuthorID
	}

	var (
		images  map[string][]*models.PostImage
		authors map[string]*models.ProfileSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		images, err = s.posts.ImagesByPosts(gctx, postIDs)
		if err != nil {
			return fmt.Errorf("failed to load post images: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		authors, err = loadSummaries(gctx, s.profiles, authorIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	for _, it := range items {
		it.Author = authors[it.AuthorID]
		if imgs := images[it.ID]; imgs != nil {
			it.Images = imgs
		} else {
			it.Images = []*models.PostImage{}
		}
	}
	return nil
}

// Delete removes a post and its image objects. Allowed for the author and admins.
func (s *PostService) Delete(ctx context.Context, userID, postID string, asAdmin bool) error {
	item, err := s.posts.GetByID(ctx, postID, userID)
	if err != nil {
		return storeErr(err, "post")
	}
	if item.AuthorID != userID && !asAdmin {
		return forbidden("only the author can delete this post")
	}

	images, err := s.posts.ImagesByPosts(ctx, []string{postID})
	if err != nil {
		return fmt.Errorf("failed to load post images: %w", err)
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return storeErr(err, "post")
	}

	keys := make([]string, 0, len(images[postID]))
	for _, img := range images[postID] {
		keys = append(keys, img.StorageKey)
	}
	if len(keys) > 0 {
		if err := s.objects.Delete(ctx, keys...); err != nil {
			log.Error().
				Err(err).
				Str("post_id", postID).
				Int("objects", len(keys)).
				Msg("Failed to delete post image objects")
		}
	}

	log.Info().Str("post_id", postID).Str("user_id", userID).Bool("admin", asAdmin).Msg("Post deleted")
	return nil
}

// PresignImage attaches an image to the caller's post and returns a presigned PUT
func (s *PostService) PresignImage(ctx context.Context, userID, postID string, req UploadRequest) (*UploadResponse, error) {
	item, err := s.posts.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, storeErr(err, "post")
	}
	if item.AuthorID != userID {
		return nil, forbidden("only the author can add images")
	}
	if err := req.normalize(s.limits); err != nil {
		return nil, err
	}

	imageID := uuid.New().String()
	key := storage.Key("posts", postID, imageID, req.ContentType)
	resp, err := presign(ctx, s.objects, s.limits, key, req)
	if err != nil {
		return nil, err
	}

	img := &models.PostImage{
		ID:         imageID,
		PostID:     postID,
		StorageKey: key,
		URL:        resp.ObjectURL,
		CreatedAt:  s.now(),
	}
	if err := s.posts.AddImage(ctx, img); err != nil {
		return nil, fmt.Errorf("failed to add post image: %w", err)
	}
	resp.ID = imageID
	return resp, nil
}

// ToggleLike flips the caller's like and reports whether the post is now liked
func (s *PostService) ToggleLike(ctx context.Context, userID, postID string) (bool, error) {
	if _, err := s.posts.GetByID(ctx, postID, userID); err != nil {
		return false, storeErr(err, "post")
	}
	liked, err := s.posts.ToggleLike(ctx, postID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to toggle like: %w", err)
	}
	return liked, nil
}

// ToggleBookmark flips the caller's bookmark and reports whether the post is now bookmarked
func (s *PostService) ToggleBookmark(ctx context.Context, userID, postID string) (bool, error) {
	if _, err := s.posts.GetByID(ctx, postID, userID); err != nil {
		return false, storeErr(err, "post")
	}
	saved, err := s.posts.ToggleBookmark(ctx, postID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to toggle bookmark: %w", err)
	}
	return saved, nil
}

// AddComment replies to a post
func (s *PostService) AddComment(ctx context.Context, userID, postID, body string) (*models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, invalid("body", "is required")
	}
	if len([]rune(body)) > maxCommentLength {
		return nil, invalid("body", fmt.Sprintf("must be at most %d characters", maxCommentLength))
	}
	if _, err := s.posts.GetByID(ctx, postID, userID); err != nil {
		return nil, storeErr(err, "post")
	}

	c := &models.Comment{
		ID:        uuid.New().String(),
		PostID:    postID,
		AuthorID:  userID,
		Body:      body,
		CreatedAt: s.now(),
	}
	if err := s.posts.AddComment(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	authors, err := loadSummaries(ctx, s.profiles, []string{userID})
	if err != nil {
		return nil, err
	}
	c.Author = authors[userID]
	return c, nil
}

// ListComments returns the comments of a post, oldest first, with authors
func (s *PostService) ListComments(ctx context.Context, userID, postID string) ([]*models.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID, userID); err != nil {
		return nil, storeErr(err, "post")
	}
	comments, err := s.posts.ListComments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	ids := make([]string, len(comments))
	for i, c := range comments {
		ids[i] = c.AuthorID
	}
	authors, err := loadSummaries(ctx, s.profiles, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		c.Author = authors[c.AuthorID]
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}

// DeleteComment removes a comment. Allowed for its author and admins.
func (s *PostService) DeleteComment(ctx context.Context, userID, commentID string, asAdmin bool) error {
	c, err := s.posts.GetComment(ctx, commentID)
	if err != nil {
		return storeErr(err, "comment")
	}
	if c.AuthorID != userID && !asAdmin {
		return forbidden("only the author can delete this comment")
	}
	if err := s.posts.DeleteComment(ctx, commentID); err != nil {
		return storeErr(err, "comment")
	}
	return nil
}

func nonNil(items []*models.FeedItem) []*models.FeedItem {
	if items == nil {
		return []*models.FeedItem{}
	}
	return items
}
