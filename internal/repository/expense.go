package repository

import (
	"context"
	"fmt"

	"tripshare-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const expenseColumns = `id, trip_id, paid_by, description, amount, currency, category, split_policy,
	participants, paid_at, created_by, created_at, updated_at`

// ExpenseRepository handles database operations for expenses and settlements
type ExpenseRepository struct {
	db *pgxpool.Pool
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func scanExpense(row pgx.Row) (*models.Expense, error) {
	var e models.Expense
	err := row.Scan(
		&e.ID, &e.TripID, &e.PaidBy, &e.Description, &e.Amount, &e.Currency, &e.Category, &e.SplitPolicy,
		&e.Participants, &e.PaidAt, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create creates a new expense
func (r *ExpenseRepository) Create(ctx context.Context, e *models.Expense) error {
	query := `INSERT INTO expenses (` + expenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.Exec(ctx, query,
		e.ID, e.TripID, e.PaidBy, e.Description, e.Amount, e.Currency, e.Category, e.SplitPolicy,
		e.Participants, e.PaidAt, e.CreatedBy, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// GetByID retrieves an expense by ID
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`
	e, err := scanExpense(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "expense")
	}
	return e, nil
}

// Update saves the editable expense fields
func (r *ExpenseRepository) Update(ctx context.Context, e *models.Expense) error {
	query := `
		UPDATE expenses
		SET paid_by = $1, description = $2, amount = $3, currency = $4, category = $5,
			split_policy = $6, participants = $7, paid_at = $8, updated_at = $9
		WHERE id = $10
	`
	tag, err := r.db.Exec(ctx, query,
		e.PaidBy, e.Description, e.Amount, e.Currency, e.Category,
		e.SplitPolicy, e.Participants, e.PaidAt, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return writeErr(err, "update", "expense")
	}
	return requireAffected(tag, "expense")
}

// Delete deletes an expense
func (r *ExpenseRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return writeErr(err, "delete", "expense")
	}
	return requireAffected(tag, "expense")
}

// ListByTrip returns a trip's expenses, most recent payment first
func (r *ExpenseRepository) ListByTrip(ctx context.Context, tripID string) ([]*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE trip_id = $1 ORDER BY paid_at DESC, created_at DESC`
	rows, err := r.db.Query(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var out []*models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	return out, nil
}

// CreateSettlement records a payment between members
func (r *ExpenseRepository) CreateSettlement(ctx context.Context, s *models.Settlement) error {
	query := `
		INSERT INTO settlements (id, trip_id, from_user_id, to_user_id, amount, currency, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		s.ID, s.TripID, s.FromUserID, s.ToUserID, s.Amount, s.Currency, s.Note, s.CreatedBy, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create settlement: %w", err)
	}
	return nil
}

// ListSettlements returns a trip's recorded payments, newest first
func (r *ExpenseRepository) ListSettlements(ctx context.Context, tripID string) ([]*models.Settlement, error) {
	query := `
		SELECT id, trip_id, from_user_id, to_user_id, amount, currency, note, created_by, created_at
		FROM settlements
		WHERE trip_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var out []*models.Settlement
	for rows.Next() {
		var s models.Settlement
		if err := rows.Scan(
			&s.ID, &s.TripID, &s.FromUserID, &s.ToUserID, &s.Amount, &s.Currency, &s.Note, &s.CreatedBy, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settlements: %w", err)
	}
	return out, nil
}
