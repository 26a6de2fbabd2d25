package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"tripshare-backend/internal/middleware"
	"tripshare-backend/internal/models"
	"tripshare-backend/internal/repository"
	"tripshare-backend/internal/services"

	"github.com/stretchr/testify/require"
)

type memProfiles struct {
	mu   sync.Mutex
	byID map[string]*models.Profile
}

func (m *memProfiles) Create(_ context.Context, p *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if strings.EqualFold(existing.Email, p.Email) {
			return repository.ErrDuplicate
		}
	}
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *memProfiles) GetByID(_ context.Context, id string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProfiles) GetByEmail(_ context.Context, email string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byID {
		if strings.EqualFold(p.Email, email) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memProfiles) GetByIDs(ctx context.Context, ids []string) ([]*models.Profile, error) {
	var out []*models.Profile
	for _, id := range ids {
		if p, err := m.GetByID(ctx, id); err == nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProfiles) Update(_ context.Context, p *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *memProfiles) UpdatePassword(context.Context, string, string) error { return nil }

func (m *memProfiles) SetBanned(_ context.Context, id string, banned bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Banned = banned
	return nil
}

func (m *memProfiles) CreateResetToken(context.Context, string, string, time.Time) error { return nil }

func (m *memProfiles) ConsumeResetToken(context.Context, string, time.Time) (string, error) {
	return "", repository.ErrNotFound
}

type memTrips struct {
	mu      sync.Mutex
	byID    map[string]*models.Trip
	collabs map[string][]string
}

func (m *memTrips) Create(_ context.Context, t *models.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.byID[t.ID] = &cp
	return nil
}

func (m *memTrips) GetByID(_ context.Context, id string) (*models.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTrips) Update(ctx context.Context, t *models.Trip) error { return m.Create(ctx, t) }

func (m *memTrips) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

func (m *memTrips) ListForUser(_ context.Context, userID string) ([]*models.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Trip{}
	for _, t := range m.byID {
		if t.OwnerID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTrips) ListPublic(context.Context, int, int) ([]*models.Trip, int, error) {
	return []*models.Trip{}, 0, nil
}

func (m *memTrips) IsCollaborator(_ context.Context, tripID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.collabs[tripID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memTrips) AddCollaborator(_ context.Context, tripID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collabs[tripID] = append(m.collabs[tripID], userID)
	return nil
}

func (m *memTrips) RemoveCollaborator(context.Context, string, string) error { return nil }

func (m *memTrips) ListMembers(_ context.Context, tripID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[tripID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return append([]string{t.OwnerID}, m.collabs[tripID]...), nil
}

type memPhotos struct {
	mu   sync.Mutex
	byID map[string]*models.Photo
}

func (m *memPhotos) Create(_ context.Context, p *models.Photo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *memPhotos) GetByID(_ context.Context, id string) (*models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPhotos) ListByTrip(context.Context, string, int, int) ([]*models.Photo, int, error) {
	return []*models.Photo{}, 0, nil
}

func (m *memPhotos) StorageKeysByTrip(context.Context, string) ([]string, error) { return nil, nil }

func (m *memPhotos) MarkUploaded(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Uploaded = true
	return nil
}

func (m *memPhotos) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

type memObjects struct{}

func (memObjects) PresignUpload(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://uploads.test/" + key + "?sig=1", nil
}

func (memObjects) PublicURL(key string) string { return "https://cdn.test/" + key }

func (memObjects) Delete(context.Context, ...string) error { return nil }

// env wires real services over in-memory stores
type env struct {
	profiles *memProfiles
	trips    *memTrips
	photos   *memPhotos
	hub      *services.Hub
	users    *services.UserService
	tripSvc  *services.TripService
	photoSvc *services.PhotoService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		profiles: &memProfiles{byID: map[string]*models.Profile{}},
		trips:    &memTrips{byID: map[string]*models.Trip{}, collabs: map[string][]string{}},
		photos:   &memPhotos{byID: map[string]*models.Photo{}},
		hub:      services.NewHub(services.HubConfig{CursorThrottle: time.Nanosecond}),
	}
	logger := services.NewActivityLogger(nil)
	e.users = services.NewUserService(e.profiles, "test-secret", time.Hour)
	e.tripSvc = services.NewTripService(e.trips, e.photos, memObjects{}, logger, e.hub)
	e.photoSvc = services.NewPhotoService(e.photos, e.trips, memObjects{}, services.DefaultUploadLimits, logger, e.hub)

	now := time.Now()
	for _, p := range []*models.Profile{
		{ID: "owner", Email: "owner@example.com", DisplayName: "Owner", Role: models.RoleUser},
		{ID: "collab", Email: "collab@example.com", DisplayName: "Collab", Role: models.RoleUser},
		{ID: "outsider", Email: "out@example.com", DisplayName: "Out", Role: models.RoleUser},
	} {
		p.CreatedAt = now
		require.NoError(t, e.profiles.Create(context.Background(), p))
	}
	require.NoError(t, e.trips.Create(context.Background(), &models.Trip{
		ID: "trip-1", OwnerID: "owner", Title: "Lisbon", Destination: "Lisbon", Interests: []string{"food"},
	}))
	require.NoError(t, e.trips.AddCollaborator(context.Background(), "trip-1", "collab"))
	return e
}

func (e *env) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := e.users.GenerateJWT(userID)
	require.NoError(t, err)
	return token
}

// as runs req through handler with the caller's profile in context
func as(userID, role string, handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	ctx := middleware.WithProfile(req.Context(), &models.Profile{ID: userID, Role: role})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}
