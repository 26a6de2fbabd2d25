package services

import (
	"context"
	"testing"

	"tripshare-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func newTestTripService(f *fixture) *TripService {
	return NewTripService(f.trips, f.photos, f.objects, f.logger, f.publisher)
}

func TestTripCreateValidates(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newTestTripService(f)

	_, err := svc.Create(ctx, "u1", TripInput{Destination: ptr("Japan")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, "u1", TripInput{Title: ptr("Tokyo"), Destination: ptr("Japan"),
		StartDate: ptr("2026-05-10"), EndDate: ptr("2026-05-01")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, "u1", TripInput{Title: ptr("Tokyo"), Destination: ptr("Japan"), StartDate: ptr("May 1")})
	assert.ErrorIs(t, err, ErrValidation)

	trip, err := svc.Create(ctx, "u1", TripInput{
		Title:       ptr(" Tokyo "),
		Destination: ptr("Japan"),
		StartDate:   ptr("2026-05-01"),
		EndDate:     ptr("2026-05-03"),
		Interests:   ptr([]string{"Food", "food", " Temples ", ""}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Tokyo", trip.Title)
	assert.Equal(t, "u1", trip.OwnerID)
	assert.Equal(t, []string{"food", "temples"}, trip.Interests)
	assert.Equal(t, 3, trip.Days())
	assert.Equal(t, []string{"trip:create"}, f.logs.actions())
}

func TestTripAccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newTestTripService(f)
	trip := f.seedTrip()

	_, err := svc.Get(ctx, "collab", trip.ID)
	assert.NoError(t, err)

	_, err = svc.Get(ctx, "outsider", trip.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Update(ctx, "collab", trip.ID, TripInput{Description: ptr("updated")})
	assert.NoError(t, err)

	_, err = svc.Share(ctx, "collab", trip.ID, true)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Share(ctx, "owner", trip.ID, true)
	require.NoError(t, err)

	_, err = svc.Get(ctx, "outsider", trip.ID)
	assert.NoError(t, err, "public trips are readable")

	_, err = svc.Update(ctx, "outsider", trip.ID, TripInput{Description: ptr("nope")})
	assert.ErrorIs(t, err, ErrForbidden, "public trips are not editable")

	_, err = svc.Get(ctx, "owner", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	guides, total, err := svc.ListGuides(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, guides, 1)
}

func TestTripDeleteRemovesPhotoObjects(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newTestTripService(f)
	trip := f.seedTrip()
	require.NoError(t, f.photos.Create(ctx, &models.Photo{ID: "p1", TripID: trip.ID, StorageKey: "trips/trip-1/p1.jpg"}))
	require.NoError(t, f.photos.Create(ctx, &models.Photo{ID: "p2", TripID: trip.ID, StorageKey: "trips/trip-1/p2.png"}))

	assert.ErrorIs(t, svc.Delete(ctx, "collab", trip.ID), ErrForbidden)

	require.NoError(t, svc.Delete(ctx, "owner", trip.ID))
	assert.ElementsMatch(t, []string{"trips/trip-1/p1.jpg", "trips/trip-1/p2.png"}, f.objects.deleted)
	assert.Contains(t, f.publisher.tables(), "trips:delete")

	_, err := svc.Get(ctx, "owner", trip.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveCollaborator(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newTestTripService(f)
	trip := f.seedTrip()

	assert.ErrorIs(t, svc.RemoveCollaborator(ctx, "outsider", trip.ID, "collab"), ErrForbidden)
	assert.ErrorIs(t, svc.RemoveCollaborator(ctx, "owner", trip.ID, "owner"), ErrValidation)

	require.NoError(t, svc.RemoveCollaborator(ctx, "collab", trip.ID, "collab"))
	members, err := svc.Members(ctx, "owner", trip.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"owner"}, members)
}

func TestRemoveCollaboratorEvictsLiveConnections(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	hub := NewHub(HubConfig{})
	svc := NewTripService(f.trips, f.photos, f.objects, f.logger, hub)
	trip := f.seedTrip()

	owner := hub.Join(trip.ID, "owner")
	collab := hub.Join(trip.ID, "collab")

	require.NoError(t, svc.RemoveCollaborator(ctx, "owner", trip.ID, "collab"))

	_, closed := drainClosed(t, collab)
	assert.True(t, closed)
	assert.Equal(t, []string{"owner"}, hub.Online(trip.ID))
	_, closed = drainClosed(t, owner)
	assert.False(t, closed)
}

func TestActivityLogFailureDoesNotFailRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.logs.fail = assert.AnError
	svc := newTestTripService(f)

	_, err := svc.Create(ctx, "u1", TripInput{Title: ptr("Rome"), Destination: ptr("Italy")})
	assert.NoError(t, err)
}

func TestActivityLogListing(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newTestTripService(f)
	trip := f.seedTrip()

	_, err := svc.Update(ctx, "owner", trip.ID, TripInput{Description: ptr("one")})
	require.NoError(t, err)
	_, err = svc.Share(ctx, "owner", trip.ID, true)
	require.NoError(t, err)

	entries, err := svc.ActivityLog(ctx, "collab", trip.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionShare, entries[0].Action, "newest first")

	_, err = svc.ActivityLog(ctx, "outsider", trip.ID, 10)
	assert.ErrorIs(t, err, ErrForbidden)
}
