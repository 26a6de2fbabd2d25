package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when a row does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique constraint is violated
var ErrDuplicate = errors.New("already exists")

//go:embed schema.sql
var schema string

// Migrate creates every table and index that does not exist yet
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	log.Info().Msg("Running database migrations...")
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	log.Info().Msg("Database migrations completed successfully")
	return nil
}

// notFound maps pgx.ErrNoRows and malformed ids to ErrNotFound and wraps everything else
func notFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) || isMalformedID(err) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

// writeErr wraps a failed write; a malformed id cannot match any row
func writeErr(err error, action, what string) error {
	if isMalformedID(err) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to %s %s: %w", action, what, err)
}

// isMalformedID reports invalid_text_representation, raised when a
// non-uuid string is bound to a uuid column
func isMalformedID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func requireAffected(tag pgconn.CommandTag, what string) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return nil
}
