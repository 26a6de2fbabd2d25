package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"tripshare-backend/internal/models"
	"tripshare-backend/internal/notify"
	"tripshare-backend/internal/repository"
)

type fakeProfiles struct {
	mu     sync.Mutex
	byID   map[string]*models.Profile
	resets map[string]fakeReset
}

type fakeReset struct {
	userID    string
	expiresAt time.Time
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{byID: map[string]*models.Profile{}, resets: map[string]fakeReset{}}
}

func (f *fakeProfiles) add(p *models.Profile) *models.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.Role == "" {
		p.Role = models.RoleUser
	}
	f.byID[p.ID] = p
	return p
}

func (f *fakeProfiles) Create(_ context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if strings.EqualFold(existing.Email, p.Email) {
			return repository.ErrDuplicate
		}
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProfiles) GetByID(_ context.Context, id string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) GetByEmail(_ context.Context, email string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byID {
		if strings.EqualFold(p.Email, email) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProfiles) GetByIDs(_ context.Context, ids []string) ([]*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Profile
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeProfiles) Update(_ context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[p.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProfiles) UpdatePassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.PasswordHash = hash
	return nil
}

func (f *fakeProfiles) SetBanned(_ context.Context, id string, banned bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Banned = banned
	return nil
}

func (f *fakeProfiles) CreateResetToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets[tokenHash] = fakeReset{userID: userID, expiresAt: expiresAt}
	return nil
}

func (f *fakeProfiles) ConsumeResetToken(_ context.Context, tokenHash string, now time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resets[tokenHash]
	if !ok || !now.Before(r.expiresAt) {
		return "", repository.ErrNotFound
	}
	delete(f.resets, tokenHash)
	return r.userID, nil
}

type fakeTrips struct {
	mu      sync.Mutex
	byID    map[string]*models.Trip
	collabs map[string][]string
}

func newFakeTrips() *fakeTrips {
	return &fakeTrips{byID: map[string]*models.Trip{}, collabs: map[string][]string{}}
}

func (f *fakeTrips) add(t *models.Trip, collaborators ...string) *models.Trip {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.Interests == nil {
		t.Interests = []string{}
	}
	f.byID[t.ID] = t
	f.collabs[t.ID] = append(f.collabs[t.ID], collaborators...)
	return t
}

func (f *fakeTrips) Create(_ context.Context, t *models.Trip) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	f.byID[t.ID] = &cp
	return nil
}

func (f *fakeTrips) GetByID(_ context.Context, id string) (*models.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTrips) Update(_ context.Context, t *models.Trip) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[t.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *t
	f.byID[t.ID] = &cp
	return nil
}

func (f *fakeTrips) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	delete(f.collabs, id)
	return nil
}

func (f *fakeTrips) ListForUser(_ context.Context, userID string) ([]*models.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Trip
	for id, t := range f.byID {
		if t.OwnerID == userID || contains(f.collabs[id], userID) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTrips) ListPublic(_ context.Context, limit, offset int) ([]*models.Trip, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Trip
	for _, t := range f.byID {
		if t.IsPublic {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := len(out)
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (f *fakeTrips) IsCollaborator(_ context.Context, tripID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return contains(f.collabs[tripID], userID), nil
}

func (f *fakeTrips) AddCollaborator(_ context.Context, tripID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !contains(f.collabs[tripID], userID) {
		f.collabs[tripID] = append(f.collabs[tripID], userID)
	}
	return nil
}

func (f *fakeTrips) RemoveCollaborator(_ context.Context, tripID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.collabs[tripID]
	for i, id := range list {
		if id == userID {
			f.collabs[tripID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeTrips) ListMembers(_ context.Context, tripID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[tripID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return append([]string{t.OwnerID}, f.collabs[tripID]...), nil
}

type fakeInvitations struct {
	mu   sync.Mutex
	byID map[string]*models.Invitation
}

func newFakeInvitations() *fakeInvitations {
	return &fakeInvitations{byID: map[string]*models.Invitation{}}
}

func (f *fakeInvitations) Create(_ context.Context, inv *models.Invitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *inv
	f.byID[inv.ID] = &cp
	return nil
}

func (f *fakeInvitations) GetByID(_ context.Context, id string) (*models.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeInvitations) ListPendingForEmail(_ context.Context, email string) ([]*models.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Invitation
	for _, inv := range f.byID {
		if inv.Status == models.InvitationPending && strings.EqualFold(inv.InviteeEmail, email) {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeInvitations) HasPending(_ context.Context, tripID, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.byID {
		if inv.TripID == tripID && inv.Status == models.InvitationPending && strings.EqualFold(inv.InviteeEmail, email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeInvitations) Respond(_ context.Context, id, status string, inviteeID *string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.byID[id]
	if !ok || inv.Status != models.InvitationPending {
		return repository.ErrNotFound
	}
	inv.Status = status
	inv.InviteeID = inviteeID
	inv.RespondedAt = &at
	return nil
}

type fakeActivities struct {
	mu   sync.Mutex
	byID map[string]*models.Activity
}

func newFakeActivities() *fakeActivities {
	return &fakeActivities{byID: map[string]*models.Activity{}}
}

func (f *fakeActivities) Create(_ context.Context, a *models.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeActivities) GetByID(_ context.Context, id string) (*models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeActivities) Update(_ context.Context, a *models.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[a.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeActivities) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeActivities) ListByTrip(_ context.Context, tripID string) ([]*models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Activity
	for _, a := range f.byID {
		if a.TripID == tripID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeActivities) NextOrderIndex(_ context.Context, tripID string, day int, period models.TimePeriod) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := 0
	for _, a := range f.byID {
		if a.TripID == tripID && a.Day == day && a.Period == period && a.OrderIndex >= next {
			next = a.OrderIndex + 1
		}
	}
	return next, nil
}

func (f *fakeActivities) Reorder(_ context.Context, tripID string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		if a, ok := f.byID[id]; !ok || a.TripID != tripID {
			return repository.ErrNotFound
		}
	}
	for i, id := range ids {
		f.byID[id].OrderIndex = i
	}
	return nil
}

type fakeIdeas struct {
	mu         sync.Mutex
	byID       map[string]*models.Idea
	activities *fakeActivities
}

func newFakeIdeas(activities *fakeActivities) *fakeIdeas {
	return &fakeIdeas{byID: map[string]*models.Idea{}, activities: activities}
}

func (f *fakeIdeas) Create(_ context.Context, i *models.Idea) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *i
	f.byID[i.ID] = &cp
	return nil
}

func (f *fakeIdeas) GetByID(_ context.Context, id string) (*models.Idea, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *i
	return &cp, nil
}

func (f *fakeIdeas) Update(_ context.Context, i *models.Idea) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[i.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *i
	f.byID[i.ID] = &cp
	return nil
}

func (f *fakeIdeas) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeIdeas) ListByTrip(_ context.Context, tripID string) ([]*models.Idea, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Idea
	for _, i := range f.byID {
		if i.TripID == tripID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *fakeIdeas) Promote(ctx context.Context, ideaID string, a *models.Activity) error {
	if err := f.Delete(ctx, ideaID); err != nil {
		return err
	}
	return f.activities.Create(ctx, a)
}

type fakeExpenses struct {
	mu          sync.Mutex
	byID        map[string]*models.Expense
	settlements []*models.Settlement
}

func newFakeExpenses() *fakeExpenses {
	return &fakeExpenses{byID: map[string]*models.Expense{}}
}

func (f *fakeExpenses) Create(_ context.Context, e *models.Expense) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeExpenses) GetByID(_ context.Context, id string) (*models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeExpenses) Update(_ context.Context, e *models.Expense) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[e.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeExpenses) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeExpenses) ListByTrip(_ context.Context, tripID string) ([]*models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Expense
	for _, e := range f.byID {
		if e.TripID == tripID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeExpenses) CreateSettlement(_ context.Context, s *models.Settlement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settlements = append(f.settlements, s)
	return nil
}

func (f *fakeExpenses) ListSettlements(_ context.Context, tripID string) ([]*models.Settlement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Settlement
	for _, s := range f.settlements {
		if s.TripID == tripID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakePhotos struct {
	mu   sync.Mutex
	byID map[string]*models.Photo
}

func newFakePhotos() *fakePhotos {
	return &fakePhotos{byID: map[string]*models.Photo{}}
}

func (f *fakePhotos) Create(_ context.Context, p *models.Photo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePhotos) GetByID(_ context.Context, id string) (*models.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePhotos) ListByTrip(_ context.Context, tripID string, limit, offset int) ([]*models.Photo, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Photo
	for _, p := range f.byID {
		if p.TripID == tripID && p.Uploaded {
			out = append(out, p)
		}
	}
	total := len(out)
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (f *fakePhotos) StorageKeysByTrip(_ context.Context, tripID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for _, p := range f.byID {
		if p.TripID == tripID {
			keys = append(keys, p.StorageKey)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fakePhotos) MarkUploaded(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Uploaded = true
	return nil
}

func (f *fakePhotos) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakePosts struct {
	mu        sync.Mutex
	byID      map[string]*models.Post
	images    map[string][]*models.PostImage
	likes     map[string]map[string]bool
	bookmarks map[string]map[string]bool
	comments  map[string]*models.Comment
}

func newFakePosts() *fakePosts {
	return &fakePosts{
		byID:      map[string]*models.Post{},
		images:    map[string][]*models.PostImage{},
		likes:     map[string]map[string]bool{},
		bookmarks: map[string]map[string]bool{},
		comments:  map[string]*models.Comment{},
	}
}

func (f *fakePosts) item(p *models.Post, viewerID string) *models.FeedItem {
	comments := 0
	for _, c := range f.comments {
		if c.PostID == p.ID {
			comments++
		}
	}
	return &models.FeedItem{
		Post: *p,
		PostStats: models.PostStats{
			LikeCount:    len(f.likes[p.ID]),
			CommentCount: comments,
			Liked:        f.likes[p.ID][viewerID],
			Bookmarked:   f.bookmarks[p.ID][viewerID],
		},
		Images: []*models.PostImage{},
	}
}

func (f *fakePosts) Create(_ context.Context, p *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePosts) GetByID(_ context.Context, id, viewerID string) (*models.FeedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return f.item(p, viewerID), nil
}

func (f *fakePosts) sorted() []*models.Post {
	out := make([]*models.Post, 0, len(f.byID))
	for _, p := range f.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakePosts) Feed(_ context.Context, viewerID string, limit, offset int) ([]*models.FeedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.FeedItem
	for i, p := range f.sorted() {
		if i >= offset && len(out) < limit {
			out = append(out, f.item(p, viewerID))
		}
	}
	return out, nil
}

func (f *fakePosts) Bookmarked(_ context.Context, viewerID string, limit, offset int) ([]*models.FeedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.FeedItem
	for _, p := range f.sorted() {
		if f.bookmarks[p.ID][viewerID] && len(out) < limit {
			out = append(out, f.item(p, viewerID))
		}
	}
	return out, nil
}

func (f *fakePosts) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	delete(f.images, id)
	return nil
}

func (f *fakePosts) AddImage(_ context.Context, img *models.PostImage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	img.Position = len(f.images[img.PostID])
	f.images[img.PostID] = append(f.images[img.PostID], img)
	return nil
}

func (f *fakePosts) ImagesByPosts(_ context.Context, ids []string) (map[string][]*models.PostImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string][]*models.PostImage{}
	for _, id := range ids {
		if imgs, ok := f.images[id]; ok {
			out[id] = imgs
		}
	}
	return out, nil
}

func toggle(set map[string]map[string]bool, postID, userID string) bool {
	if set[postID] == nil {
		set[postID] = map[string]bool{}
	}
	if set[postID][userID] {
		delete(set[postID], userID)
		return false
	}
	set[postID][userID] = true
	return true
}

func (f *fakePosts) ToggleLike(_ context.Context, postID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return toggle(f.likes, postID, userID), nil
}

func (f *fakePosts) ToggleBookmark(_ context.Context, postID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return toggle(f.bookmarks, postID, userID), nil
}

func (f *fakePosts) AddComment(_ context.Context, c *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	f.comments[c.ID] = &cp
	return nil
}

func (f *fakePosts) GetComment(_ context.Context, id string) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakePosts) ListComments(_ context.Context, postID string) ([]*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Comment
	for _, c := range f.comments {
		if c.PostID == postID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakePosts) DeleteComment(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.comments, id)
	return nil
}

type fakeLogs struct {
	mu      sync.Mutex
	entries []*models.ActivityLog
	fail    error
}

func (f *fakeLogs) Create(_ context.Context, l *models.ActivityLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.entries = append(f.entries, l)
	return nil
}

func (f *fakeLogs) ListByTrip(_ context.Context, tripID string, limit int) ([]*models.ActivityLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ActivityLog
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if f.entries[i].TripID == tripID {
			out = append(out, f.entries[i])
		}
	}
	return out, nil
}

func (f *fakeLogs) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.EntityType + ":" + e.Action
	}
	return out
}

type fakeObjects struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeObjects) PresignUpload(_ context.Context, key, contentType string, expires time.Duration) (string, error) {
	return "https://upload.test/" + key + "?type=" + contentType + "&expires=" + expires.String(), nil
}

func (f *fakeObjects) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

func (f *fakeObjects) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, keys...)
	return nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (f *fakeNotifier) Notify(_ context.Context, msg notify.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

type fakePreviewer struct {
	preview *models.LinkPreview
	err     error
	calls   []string
}

func (f *fakePreviewer) Fetch(_ context.Context, rawURL string) (*models.LinkPreview, error) {
	f.calls = append(f.calls, rawURL)
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.preview
	cp.URL = rawURL
	return &cp, nil
}

type change struct {
	tripID, table, action, id string
}

type fakePublisher struct {
	mu      sync.Mutex
	changes []change
}

func (f *fakePublisher) PublishChange(tripID, table, action, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changes = append(f.changes, change{tripID, table, action, id})
}

func (f *fakePublisher) tables() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.changes))
	for i, c := range f.changes {
		out[i] = c.table + ":" + c.action
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// fixture wires every service against fresh fakes
type fixture struct {
	profiles    *fakeProfiles
	trips       *fakeTrips
	invitations *fakeInvitations
	activities  *fakeActivities
	ideas       *fakeIdeas
	expenses    *fakeExpenses
	photos      *fakePhotos
	posts       *fakePosts
	logs        *fakeLogs
	objects     *fakeObjects
	notifier    *fakeNotifier
	previewer   *fakePreviewer
	publisher   *fakePublisher
	logger      *ActivityLogger
}

func newFixture() *fixture {
	activities := newFakeActivities()
	f := &fixture{
		profiles:    newFakeProfiles(),
		trips:       newFakeTrips(),
		invitations: newFakeInvitations(),
		activities:  activities,
		ideas:       newFakeIdeas(activities),
		expenses:    newFakeExpenses(),
		photos:      newFakePhotos(),
		posts:       newFakePosts(),
		logs:        &fakeLogs{},
		objects:     &fakeObjects{},
		notifier:    &fakeNotifier{},
		previewer:   &fakePreviewer{preview: &models.LinkPreview{Title: "Preview", SiteName: "example.com"}},
		publisher:   &fakePublisher{},
	}
	f.logger = NewActivityLogger(f.logs)
	return f
}

// seedTrip adds owner, collaborator and outsider profiles plus a private trip
func (f *fixture) seedTrip() *models.Trip {
	f.profiles.add(&models.Profile{ID: "owner", Email: "owner@example.com", DisplayName: "Owner"})
	f.profiles.add(&models.Profile{ID: "collab", Email: "collab@example.com", DisplayName: "Collab"})
	f.profiles.add(&models.Profile{ID: "outsider", Email: "out@example.com", DisplayName: "Outsider"})
	return f.trips.add(&models.Trip{ID: "trip-1", OwnerID: "owner", Title: "Lisbon", Destination: "Portugal"}, "collab")
}

// steppingClock returns a clock that advances one second per call
func steppingClock() func() time.Time {
	t := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}
