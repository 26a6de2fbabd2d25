package repository

import (
	"context"
	"fmt"

	"tripshare-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const activityColumns = `id, trip_id, day, period, type, title, notes, location, start_time, cost,
	order_index, created_by, created_at, updated_at`

// ActivityRepository handles database operations for itinerary activities
type ActivityRepository struct {
	db *pgxpool.Pool
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func scanActivity(row pgx.Row) (*models.Activity, error) {
	var a models.Activity
	err := row.Scan(
		&a.ID, &a.TripID, &a.Day, &a.Period, &a.Type, &a.Title, &a.Notes, &a.Location, &a.StartTime,
		&a.Cost, &a.OrderIndex, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Badge = a.Type.Badge()
	return &a, nil
}

// Create creates a new activity
func (r *ActivityRepository) Create(ctx context.Context, a *models.Activity) error {
	query := `INSERT INTO activities (` + activityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.db.Exec(ctx, query,
		a.ID, a.TripID, a.Day, a.Period, a.Type, a.Title, a.Notes, a.Location, a.StartTime,
		a.Cost, a.OrderIndex, a.CreatedBy, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

// GetByID retrieves an activity by ID
func (r *ActivityRepository) GetByID(ctx context.Context, id string) (*models.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = $1`
	a, err := scanActivity(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "activity")
	}
	return a, nil
}

// Update saves the editable activity fields
func (r *ActivityRepository) Update(ctx context.Context, a *models.Activity) error {
	query := `
		UPDATE activities
		SET day = $1, period = $2, type = $3, title = $4, notes = $5, location = $6,
			start_time = $7, cost = $8, order_index = $9, updated_at = $10
		WHERE id = $11
	`
	tag, err := r.db.Exec(ctx, query,
		a.Day, a.Period, a.Type, a.Title, a.Notes, a.Location,
		a.StartTime, a.Cost, a.OrderIndex, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return writeErr(err, "update", "activity")
	}
	return requireAffected(tag, "activity")
}

// Delete deletes an activity
func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return writeErr(err, "delete", "activity")
	}
	return requireAffected(tag, "activity")
}

// ListByTrip returns a trip's activities ordered by day, period and position
func (r *ActivityRepository) ListByTrip(ctx context.Context, tripID string) ([]*models.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE trip_id = $1
		ORDER BY day,
			CASE period WHEN 'morning' THEN 0 WHEN 'afternoon' THEN 1 ELSE 2 END,
			order_index, created_at
	`
	rows, err := r.db.Query(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var out []*models.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}
	return out, nil
}

// NextOrderIndex returns the position after the last activity in a day and period
func (r *ActivityRepository) NextOrderIndex(ctx context.Context, tripID string, day int, period models.TimePeriod) (int, error) {
	query := `SELECT COALESCE(MAX(order_index) + 1, 0) FROM activities WHERE trip_id = $1 AND day = $2 AND period = $3`
	var next int
	if err := r.db.QueryRow(ctx, query, tripID, day, period).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to get next order index: %w", err)
	}
	return next, nil
}

// Reorder sets order_index to each id's position in ids, in one transaction.
// Only rows belonging to tripID are touched.
func (r *ActivityRepository) Reorder(ctx context.Context, tripID string, ids []string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin reorder: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for i, id := range ids {
		batch.Queue(
			`UPDATE activities SET order_index = $1, updated_at = now() WHERE id = $2 AND trip_id = $3`,
			i, id, tripID,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range ids {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return writeErr(err, "reorder", "activity")
		}
		if tag.RowsAffected() == 0 {
			results.Close()
			return fmt.Errorf("activity %w", ErrNotFound)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to close reorder batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reorder: %w", err)
	}
	return nil
}
