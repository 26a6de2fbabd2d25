package repository

import (
	"context"
	"fmt"
	"time"

	"tripshare-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const profileColumns = `id, email, password_hash, display_name, bio, avatar_url, push_token, role, banned, created_at, updated_at`

// ProfileRepository handles database operations for profiles
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.ID, &p.Email, &p.PasswordHash, &p.DisplayName, &p.Bio, &p.AvatarURL,
		&p.PushToken, &p.Role, &p.Banned, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create creates a new profile
func (r *ProfileRepository) Create(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.Email, p.PasswordHash, p.DisplayName, p.Bio, p.AvatarURL,
		p.PushToken, p.Role, p.Banned, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("profile email %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetByID retrieves a profile by ID
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	p, err := scanProfile(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "profile")
	}
	return p, nil
}

// GetByEmail retrieves a profile by case-insensitive email
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE lower(email) = lower($1)`
	p, err := scanProfile(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, notFound(err, "profile")
	}
	return p, nil
}

// GetByIDs retrieves every profile whose ID is in ids
func (r *ProfileRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id::text = ANY($1)`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}
	return profiles, nil
}

// Update saves the editable profile fields
func (r *ProfileRepository) Update(ctx context.Context, p *models.Profile) error {
	query := `
		UPDATE profiles
		SET display_name = $1, bio = $2, avatar_url = $3, push_token = $4, updated_at = $5
		WHERE id = $6
	`
	tag, err := r.db.Exec(ctx, query, p.DisplayName, p.Bio, p.AvatarURL, p.PushToken, p.UpdatedAt, p.ID)
	if err != nil {
		return writeErr(err, "update", "profile")
	}
	return requireAffected(tag, "profile")
}

// UpdatePassword replaces the password hash
func (r *ProfileRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	query := `UPDATE profiles SET password_hash = $1, updated_at = $2 WHERE id = $3`
	tag, err := r.db.Exec(ctx, query, hash, time.Now(), id)
	if err != nil {
		return writeErr(err, "update password for", "profile")
	}
	return requireAffected(tag, "profile")
}

// SetBanned sets the ban flag
func (r *ProfileRepository) SetBanned(ctx context.Context, id string, banned bool) error {
	query := `UPDATE profiles SET banned = $1, updated_at = $2 WHERE id = $3`
	tag, err := r.db.Exec(ctx, query, banned, time.Now(), id)
	if err != nil {
		return writeErr(err, "update ban flag for", "profile")
	}
	return requireAffected(tag, "profile")
}

// CreateResetToken stores a password reset token hash
func (r *ProfileRepository) CreateResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	query := `INSERT INTO password_resets (token_hash, user_id, expires_at) VALUES ($1, $2, $3)`
	if _, err := r.db.Exec(ctx, query, tokenHash, userID, expiresAt); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}
	return nil
}

// ConsumeResetToken marks an unexpired, unused token as used and returns its user
func (r *ProfileRepository) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time) (string, error) {
	query := `
		UPDATE password_resets SET used_at = $2
		WHERE token_hash = $1 AND used_at IS NULL AND expires_at > $2
		RETURNING user_id::text
	`
	var userID string
	if err := r.db.QueryRow(ctx, query, tokenHash, now).Scan(&userID); err != nil {
		return "", notFound(err, "reset token")
	}
	return userID, nil
}
