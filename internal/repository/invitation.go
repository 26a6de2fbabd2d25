package repository

import (
	"context"
	"fmt"
	"time"

	"tripshare-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const invitationColumns = `id, trip_id, inviter_id, invitee_email, invitee_id, status, created_at, responded_at`

// InvitationRepository handles database operations for invitations
type InvitationRepository struct {
	db *pgxpool.Pool
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db *pgxpool.Pool) *InvitationRepository {
	return &InvitationRepository{db: db}
}

func scanInvitation(row pgx.Row) (*models.Invitation, error) {
	var inv models.Invitation
	err := row.Scan(
		&inv.ID, &inv.TripID, &inv.InviterID, &inv.InviteeEmail, &inv.InviteeID,
		&inv.Status, &inv.CreatedAt, &inv.RespondedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create creates a new invitation
func (r *InvitationRepository) Create(ctx context.Context, inv *models.Invitation) error {
	query := `INSERT INTO invitations (` + invitationColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Exec(ctx, query,
		inv.ID, inv.TripID, inv.InviterID, inv.InviteeEmail, inv.InviteeID,
		inv.Status, inv.CreatedAt, inv.RespondedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

// GetByID retrieves an invitation by ID
func (r *InvitationRepository) GetByID(ctx context.Context, id string) (*models.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE id = $1`
	inv, err := scanInvitation(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "invitation")
	}
	return inv, nil
}

// ListPendingForEmail returns pending invitations addressed to email
func (r *InvitationRepository) ListPendingForEmail(ctx context.Context, email string) ([]*models.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE lower(invitee_email) = lower($1) AND status = 'pending'
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var out []*models.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invitations: %w", err)
	}
	return out, nil
}

// HasPending checks whether email already has a pending invitation to the trip
func (r *InvitationRepository) HasPending(ctx context.Context, tripID, email string) (bool, error) {
	query := `
		SELECT EXISTS(SELECT 1 FROM invitations
		WHERE trip_id = $1 AND lower(invitee_email) = lower($2) AND status = 'pending')
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, tripID, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check pending invitation: %w", err)
	}
	return exists, nil
}

// Respond moves a pending invitation to status. It fails with ErrNotFound when
// the invitation is no longer pending.
func (r *InvitationRepository) Respond(ctx context.Context, id, status string, inviteeID *string, at time.Time) error {
	query := `
		UPDATE invitations
		SET status = $1, invitee_id = COALESCE($2, invitee_id), responded_at = $3
		WHERE id = $4 AND status = 'pending'
	`
	tag, err := r.db.Exec(ctx, query, status, inviteeID, at, id)
	if err != nil {
		return writeErr(err, "update", "invitation")
	}
	return requireAffected(tag, "pending invitation")
}
