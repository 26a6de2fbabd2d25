package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"tripshare-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ideaColumns = `id, trip_id, created_by, title, description, url, type, tags, preview, created_at, updated_at`

// IdeaRepository handles database operations for ideas
type IdeaRepository struct {
	db *pgxpool.Pool
}

// NewIdeaRepository creates a new idea repository
func NewIdeaRepository(db *pgxpool.Pool) *IdeaRepository {
	return &IdeaRepository{db: db}
}

func scanIdea(row pgx.Row) (*models.Idea, error) {
	var (
		i       models.Idea
		preview []byte
	)
	err := row.Scan(
		&i.ID, &i.TripID, &i.CreatedBy, &i.Title, &i.Description, &i.URL, &i.Type, &i.Tags,
		&preview, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(preview) > 0 {
		var p models.LinkPreview
		if err := json.Unmarshal(preview, &p); err != nil {
			return nil, fmt.Errorf("failed to decode preview: %w", err)
		}
		i.Preview = &p
	}
	return &i, nil
}

func encodePreview(p *models.LinkPreview) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	return data, nil
}

// Create creates a new idea
func (r *IdeaRepository) Create(ctx context.Context, i *models.Idea) error {
	preview, err := encodePreview(i.Preview)
	if err != nil {
		return err
	}
	query := `INSERT INTO ideas (` + ideaColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = r.db.Exec(ctx, query,
		i.ID, i.TripID, i.CreatedBy, i.Title, i.Description, i.URL, i.Type, i.Tags,
		preview, i.CreatedAt, i.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create idea: %w", err)
	}
	return nil
}

// GetByID retrieves an idea by ID
func (r *IdeaRepository) GetByID(ctx context.Context, id string) (*models.Idea, error) {
	query := `SELECT ` + ideaColumns + ` FROM ideas WHERE id = $1`
	i, err := scanIdea(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "idea")
	}
	return i, nil
}

// Update saves the editable idea fields
func (r *IdeaRepository) Update(ctx context.Context, i *models.Idea) error {
	preview, err := encodePreview(i.Preview)
	if err != nil {
		return err
	}
	query := `
		UPDATE ideas
		SET title = $1, description = $2, url = $3, type = $4, tags = $5, preview = $6, updated_at = $7
		WHERE id = $8
	`
	tag, err := r.db.Exec(ctx, query, i.Title, i.Description, i.URL, i.Type, i.Tags, preview, i.UpdatedAt, i.ID)
	if err != nil {
		return writeErr(err, "update", "idea")
	}
	return requireAffected(tag, "idea")
}

// Delete deletes an idea
func (r *IdeaRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM ideas WHERE id = $1`, id)
	if err != nil {
		return writeErr(err, "delete", "idea")
	}
	return requireAffected(tag, "idea")
}

// ListByTrip returns a trip's ideas, newest first
func (r *IdeaRepository) ListByTrip(ctx context.Context, tripID string) ([]*models.Idea, error) {
	query := `SELECT ` + ideaColumns + ` FROM ideas WHERE trip_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}
	defer rows.Close()

	var out []*models.Idea
	for rows.Next() {
		i, err := scanIdea(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan idea: %w", err)
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ideas: %w", err)
	}
	return out, nil
}

// Promote creates the activity and deletes the idea atomically
func (r *IdeaRepository) Promote(ctx context.Context, ideaID string, a *models.Activity) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin promote: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM ideas WHERE id = $1`, ideaID)
	if err != nil {
		return writeErr(err, "delete", "idea")
	}
	if err := requireAffected(tag, "idea"); err != nil {
		return err
	}

	query := `INSERT INTO activities (` + activityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = tx.Exec(ctx, query,
		a.ID, a.TripID, a.Day, a.Period, a.Type, a.Title, a.Notes, a.Location, a.StartTime,
		a.Cost, a.OrderIndex, a.CreatedBy, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit promote: %w", err)
	}
	return nil
}
