package repository

import (
	"context"
	"fmt"

	"tripshare-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const photoColumns = `id, trip_id, user_id, storage_key, url, content_type, caption, uploaded, taken_at, created_at`

// PhotoRepository handles database operations for trip photos
type PhotoRepository struct {
	db *pgxpool.Pool
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db *pgxpool.Pool) *PhotoRepository {
	return &PhotoRepository{db: db}
}

func scanPhoto(row pgx.Row) (*models.Photo, error) {
	var p models.Photo
	err := row.Scan(
		&p.ID, &p.TripID, &p.UserID, &p.StorageKey, &p.URL, &p.ContentType, &p.Caption,
		&p.Uploaded, &p.TakenAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create creates a new photo
func (r *PhotoRepository) Create(ctx context.Context, p *models.Photo) error {
	query := `INSERT INTO photos (` + photoColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.TripID, p.UserID, p.StorageKey, p.URL, p.ContentType, p.Caption,
		p.Uploaded, p.TakenAt, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create photo: %w", err)
	}
	return nil
}

// GetByID retrieves a photo by ID
func (r *PhotoRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE id = $1`
	p, err := scanPhoto(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "photo")
	}
	return p, nil
}

// ListByTrip retrieves uploaded photos of a trip with pagination
func (r *PhotoRepository) ListByTrip(ctx context.Context, tripID string, limit, offset int) ([]*models.Photo, int, error) {
	countQuery := `SELECT COUNT(*) FROM photos WHERE trip_id = $1 AND uploaded`
	var total int
	if err := r.db.QueryRow(ctx, countQuery, tripID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count photos: %w", err)
	}

	query := `
		SELECT ` + photoColumns + `
		FROM photos
		WHERE trip_id = $1 AND uploaded
		ORDER BY taken_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tripID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get photos: %w", err)
	}
	defer rows.Close()

	var photos []*models.Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating photos: %w", err)
	}
	return photos, total, nil
}

// StorageKeysByTrip returns the object keys of every photo of a trip
func (r *PhotoRepository) StorageKeysByTrip(ctx context.Context, tripID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT storage_key FROM photos WHERE trip_id = $1`, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photo keys: %w", err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan photo keys: %w", err)
	}
	return keys, nil
}

// MarkUploaded flags a photo as uploaded
func (r *PhotoRepository) MarkUploaded(ctx context.Context, photoID string) error {
	tag, err := r.db.Exec(ctx, `UPDATE photos SET uploaded = TRUE WHERE id = $1`, photoID)
	if err != nil {
		return writeErr(err, "mark uploaded", "photo")
	}
	return requireAffected(tag, "photo")
}

// Delete deletes a photo row
func (r *PhotoRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return writeErr(err, "delete", "photo")
	}
	return requireAffected(tag, "photo")
}
