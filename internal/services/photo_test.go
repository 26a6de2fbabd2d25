package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripshare-backend/internal/models"
)

func newTestPhotoService(f *fixture) *PhotoService {
	return NewPhotoService(f.photos, f.trips, f.objects, UploadLimits{MaxBytes: 1 << 20, Expiry: 5 * time.Minute}, f.logger, f.publisher)
}

func TestPhotoUploadValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newTestPhotoService(f)
	trip := f.seedTrip()

	cases := map[string]UploadRequest{
		"unsupported type": {ContentType: "image/tiff", Size: 100},
		"zero size":        {ContentType: "image/png"},
		"too large":        {ContentType: "image/png", Size: 2 << 20},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.PresignUpload(ctx, "owner", trip.ID, PhotoUploadRequest{UploadRequest: req})
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := svc.PresignUpload(ctx, "outsider", trip.ID, PhotoUploadRequest{UploadRequest: UploadRequest{ContentType: "image/png", Size: 10}})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPhotoUploadFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newTestPhotoService(f)
	trip := f.seedTrip()

	resp, err := svc.PresignUpload(ctx, "collab", trip.ID, PhotoUploadRequest{
		UploadRequest: UploadRequest{Filename: "beach.HEIC", ContentType: "Image/HEIC", Size: 1024},
		Caption:       "Beach",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, 300, resp.ExpiresIn)
	assert.True(t, strings.HasPrefix(resp.ObjectURL, "https://cdn.test/trips/trip-1/"))
	assert.True(t, strings.HasSuffix(resp.ObjectURL, ".heic"))
	assert.Contains(t, resp.UploadURL, "expires=5m0s")

	photos, total, err := svc.List(ctx, "owner", trip.ID, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total, "unconfirmed uploads are hidden")
	assert.Empty(t, photos)

	_, err = svc.ConfirmUpload(ctx, "owner", trip.ID, resp.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	photo, err := svc.ConfirmUpload(ctx, "collab", trip.ID, resp.ID)
	require.NoError(t, err)
	assert.True(t, photo.Uploaded)
	assert.Equal(t, []string{"photos:create"}, f.publisher.tables())

	photos, total, err = svc.List(ctx, "owner", trip.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, photos, 1)

	require.NoError(t, svc.Delete(ctx, "owner", trip.ID, resp.ID))
	require.Len(t, f.objects.deleted, 1)
	assert.True(t, strings.HasSuffix(f.objects.deleted[0], resp.ID+".heic"))
	assert.ErrorIs(t, svc.Delete(ctx, "owner", trip.ID, resp.ID), ErrNotFound)
}

func TestPhotoDeletePermissions(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newTestPhotoService(f)
	trip := f.seedTrip()
	f.trips.add(trip, "second")

	resp, err := svc.PresignUpload(ctx, "collab", trip.ID, PhotoUploadRequest{UploadRequest: UploadRequest{ContentType: "image/jpeg", Size: 10}})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, "second", trip.ID, resp.ID), ErrForbidden)
	assert.NoError(t, svc.Delete(ctx, "owner", trip.ID, resp.ID))
}

func TestConfirmUploadChecksTripAccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newTestPhotoService(f)
	trip := f.seedTrip()
	other := f.trips.add(&models.Trip{ID: "trip-2", OwnerID: "outsider", Title: "Porto", Destination: "Portugal"}, "collab")

	resp, err := svc.PresignUpload(ctx, "collab", trip.ID, PhotoUploadRequest{UploadRequest: UploadRequest{ContentType: "image/png", Size: 10}})
	require.NoError(t, err)

	_, err = svc.ConfirmUpload(ctx, "collab", other.ID, resp.ID)
	assert.ErrorIs(t, err, ErrNotFound, "photo confirmed through another trip")

	require.NoError(t, f.trips.RemoveCollaborator(ctx, trip.ID, "collab"))
	_, err = svc.ConfirmUpload(ctx, "collab", trip.ID, resp.ID)
	assert.ErrorIs(t, err, ErrForbidden, "removed collaborator kept confirm rights")
	assert.Empty(t, f.publisher.tables())
}
