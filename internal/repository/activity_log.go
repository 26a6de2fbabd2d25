package repository

import (
	"context"
	"fmt"

	"tripshare-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ActivityLogRepository handles database operations for the trip audit trail
type ActivityLogRepository struct {
	db *pgxpool.Pool
}

// NewActivityLogRepository creates a new activity log repository
func NewActivityLogRepository(db *pgxpool.Pool) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

// Create appends an entry
func (r *ActivityLogRepository) Create(ctx context.Context, l *models.ActivityLog) error {
	query := `
		INSERT INTO activity_logs (id, trip_id, actor_id, action, entity_type, entity_id, summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query, l.ID, l.TripID, l.ActorID, l.Action, l.EntityType, l.EntityID, l.Summary, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create activity log: %w", err)
	}
	return nil
}

// ListByTrip returns the newest entries of a trip
func (r *ActivityLogRepository) ListByTrip(ctx context.Context, tripID string, limit int) ([]*models.ActivityLog, error) {
	query := `
		SELECT id, trip_id, actor_id, action, entity_type, entity_id, summary, created_at
		FROM activity_logs
		WHERE trip_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, tripID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	defer rows.Close()

	var out []*models.ActivityLog
	for rows.Next() {
		var l models.ActivityLog
		if err := rows.Scan(&l.ID, &l.TripID, &l.ActorID, &l.Action, &l.EntityType, &l.EntityID, &l.Summary, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		out = append(out, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity logs: %w", err)
	}
	return out, nil
}
