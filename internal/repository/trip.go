package repository

import (
	"context"
	"fmt"

	"tripshare-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const tripColumns = `t.id, t.owner_id, t.title, t.destination, t.description, t.start_date, t.end_date,
	t.interests, t.latitude, t.longitude, t.cover_image_url, t.is_public, t.created_at, t.updated_at`

// TripRepository handles database operations for trips and collaborators
type TripRepository struct {
	db *pgxpool.Pool
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *pgxpool.Pool) *TripRepository {
	return &TripRepository{db: db}
}

func scanTrip(row pgx.Row) (*models.Trip, error) {
	var t models.Trip
	err := row.Scan(
		&t.ID, &t.OwnerID, &t.Title, &t.Destination, &t.Description, &t.StartDate, &t.EndDate,
		&t.Interests, &t.Latitude, &t.Longitude, &t.CoverImageURL, &t.IsPublic, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTrips(rows pgx.Rows) ([]*models.Trip, error) {
	defer rows.Close()
	var trips []*models.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trips: %w", err)
	}
	return trips, nil
}

// Create creates a new trip
func (r *TripRepository) Create(ctx context.Context, t *models.Trip) error {
	query := `
		INSERT INTO trips (id, owner_id, title, destination, description, start_date, end_date,
			interests, latitude, longitude, cover_image_url, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.Exec(ctx, query,
		t.ID, t.OwnerID, t.Title, t.Destination, t.Description, t.StartDate, t.EndDate,
		t.Interests, t.Latitude, t.Longitude, t.CoverImageURL, t.IsPublic, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}
	return nil
}

// GetByID retrieves a trip by ID
func (r *TripRepository) GetByID(ctx context.Context, id string) (*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips t WHERE t.id = $1`
	t, err := scanTrip(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "trip")
	}
	return t, nil
}

// Update saves the editable trip fields
func (r *TripRepository) Update(ctx context.Context, t *models.Trip) error {
	query := `
		UPDATE trips
		SET title = $1, destination = $2, description = $3, start_date = $4, end_date = $5,
			interests = $6, latitude = $7, longitude = $8, cover_image_url = $9, is_public = $10,
			updated_at = $11
		WHERE id = $12
	`
	tag, err := r.db.Exec(ctx, query,
		t.Title, t.Destination, t.Description, t.StartDate, t.EndDate,
		t.Interests, t.Latitude, t.Longitude, t.CoverImageURL, t.IsPublic, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return writeErr(err, "update", "trip")
	}
	return requireAffected(tag, "trip")
}

// Delete deletes a trip and, through cascades, everything attached to it
func (r *TripRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return writeErr(err, "delete", "trip")
	}
	return requireAffected(tag, "trip")
}

// ListForUser returns trips the user owns or collaborates on, newest first
func (r *TripRepository) ListForUser(ctx context.Context, userID string) ([]*models.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips t
		WHERE t.owner_id = $1
		   OR EXISTS (SELECT 1 FROM trip_collaborators c WHERE c.trip_id = t.id AND c.user_id = $1)
		ORDER BY t.start_date NULLS LAST, t.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	return collectTrips(rows)
}

// ListPublic returns shared guides with pagination
func (r *TripRepository) ListPublic(ctx context.Context, limit, offset int) ([]*models.Trip, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM trips WHERE is_public`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count guides: %w", err)
	}

	query := `
		SELECT ` + tripColumns + `
		FROM trips t
		WHERE t.is_public
		ORDER BY t.updated_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list guides: %w", err)
	}
	trips, err := collectTrips(rows)
	return trips, total, err
}

// IsCollaborator checks whether the user has accepted collaboration on the trip
func (r *TripRepository) IsCollaborator(ctx context.Context, tripID, userID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM trip_collaborators WHERE trip_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, tripID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check collaborator: %w", err)
	}
	return exists, nil
}

// AddCollaborator grants edit access; adding twice is a no-op
func (r *TripRepository) AddCollaborator(ctx context.Context, tripID, userID string) error {
	query := `
		INSERT INTO trip_collaborators (trip_id, user_id, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, tripID, userID); err != nil {
		return fmt.Errorf("failed to add collaborator: %w", err)
	}
	return nil
}

// RemoveCollaborator revokes edit access
func (r *TripRepository) RemoveCollaborator(ctx context.Context, tripID, userID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM trip_collaborators WHERE trip_id = $1 AND user_id = $2`, tripID, userID)
	if err != nil {
		return writeErr(err, "remove", "collaborator")
	}
	return requireAffected(tag, "collaborator")
}

// ListMembers returns the owner followed by collaborators in join order
func (r *TripRepository) ListMembers(ctx context.Context, tripID string) ([]string, error) {
	query := `
		SELECT owner_id::text FROM trips WHERE id = $1
		UNION ALL
		(SELECT user_id::text FROM trip_collaborators WHERE trip_id = $1 ORDER BY created_at)
	`
	rows, err := r.db.Query(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	members, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan members: %w", err)
	}
	return members, nil
}
