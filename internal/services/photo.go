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
)

const (
	defaultPhotoLimit = 50
	maxCaptionLength  = 500
)

// PhotoService handles trip photo uploads
type PhotoService struct {
	photos    PhotoStore
	trips     TripStore
	objects   ObjectStore
	limits    UploadLimits
	logger    *ActivityLogger
	publisher ChangePublisher
	now       func() time.Time
}

// NewPhotoService creates a new photo service
func NewPhotoService(photos PhotoStore, trips TripStore, objects ObjectStore, limits UploadLimits, logger *ActivityLogger, publisher ChangePublisher) *PhotoService {
	return &PhotoService{
		photos:    photos,
		trips:     trips,
		objects:   objects,
		limits:    limitsOrDefault(limits),
		logger:    logger,
		publisher: publisherOrNop(publisher),
		now:       time.Now,
	}
}

// PhotoUploadRequest is an upload request with an optional caption
type PhotoUploadRequest struct {
	UploadRequest
	Caption string `json:"caption"`
}

// PresignUpload reserves a photo record and returns a presigned PUT for it.
// The photo is listed once the upload is confirmed.
func (s *PhotoService) PresignUpload(ctx context.Context, userID, tripID string, req PhotoUploadRequest) (*UploadResponse, error) {
	if _, err := authorize(ctx, s.trips, tripID, userID, AccessEdit); err != nil {
		return nil, err
	}
	if err := req.normalize(s.limits); err != nil {
		return nil, err
	}
	if len([]rune(req.Caption)) > maxCaptionLength {
		return nil, invalid("caption", fmt.Sprintf("must be at most %d characters", maxCaptionLength))
	}

	photoID := uuid.New().String()
	key := storage.Key("trips", tripID, photoID, req.ContentType)

	resp, err := presign(ctx, s.objects, s.limits, key, req.UploadRequest)
	if err != nil {
		return nil, err
	}

	now := s.now()
	photo := &models.Photo{
		ID:          photoID,
		TripID:      tripID,
		UserID:      userID,
		StorageKey:  key,
		URL:         resp.ObjectURL,
		ContentType: req.ContentType,
		Caption:     strings.TrimSpace(req.Caption),
		TakenAt:     now,
		CreatedAt:   now,
	}
	if err := s.photos.Create(ctx, photo); err != nil {
		return nil, fmt.Errorf("failed to create photo record: %w", err)
	}

	resp.ID = photoID
	log.Info().
		Str("photo_id", photoID).
		Str("trip_id", tripID).
		Str("user_id", userID).
		Msg("Photo upload URL generated")
	return resp, nil
}

// ConfirmUpload marks a photo as uploaded and announces it to the trip. The
// uploader must still have edit access to the trip the photo belongs to.
func (s *PhotoService) ConfirmUpload(ctx context.Context, userID, tripID, photoID string) (*models.Photo, error) {
	if _, err := authorize(ctx, s.trips, tripID, userID, AccessEdit); err != nil {
		return nil, err
	}
	photo, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return nil, storeErr(err, "photo")
	}
	if photo.TripID != tripID {
		return nil, fmt.Errorf("photo %w", ErrNotFound)
	}
	if photo.UserID != userID {
		return nil, forbidden("photo was reserved by another user")
	}
	if photo.Uploaded {
		return photo, nil
	}

	if err := s.photos.MarkUploaded(ctx, photoID); err != nil {
		return nil, storeErr(err, "photo")
	}
	photo.Uploaded = true

	s.logger.log(ctx, entry{photo.TripID, userID, ActionUpload, EntityPhoto, photo.ID, photo.Caption})
	s.publisher.PublishChange(photo.TripID, "photos", ActionCreate, photo.ID)
	return photo, nil
}

// List returns uploaded photos of a trip with the total count
func (s *PhotoService) List(ctx context.Context, userID, tripID string, limit, offset int) ([]*models.Photo, int, error) {
	if _, err := authorize(ctx, s.trips, tripID, userID, AccessRead); err != nil {
		return nil, 0, err
	}
	limit, offset = clampPage(limit, offset, defaultPhotoLimit)
	photos, total, err := s.photos.ListByTrip(ctx, tripID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list photos: %w", err)
	}
	return photos, total, nil
}

// Delete removes a photo and its stored object. Allowed for the uploader and
// the trip owner.
func (s *PhotoService) Delete(ctx context.Context, userID, tripID, photoID string) error {
	trip, err := authorize(ctx, s.trips, tripID, userID, AccessEdit)
	if err != nil {
		return err
	}
	photo, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return storeErr(err, "photo")
	}
	if photo.TripID != tripID {
		return fmt.Errorf("photo %w", ErrNotFound)
	}
	if photo.UserID != userID && trip.OwnerID != userID {
		return forbidden("only the uploader or trip owner can delete this photo")
	}

	if err := s.photos.Delete(ctx, photoID); err != nil {
		return storeErr(err, "photo")
	}
	if err := s.objects.Delete(ctx, photo.StorageKey); err != nil {
		log.Error().
			Err(err).
			Str("photo_id", photoID).
			Str("key", photo.StorageKey).
			Msg("Failed to delete photo object")
	}

	s.logger.log(ctx, entry{tripID, userID, ActionDelete, EntityPhoto, photo.ID, photo.Caption})
	s.publisher.PublishChange(tripID, "photos", ActionDelete, photo.ID)
	return nil
}
