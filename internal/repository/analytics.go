package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Metric names a dashboard count
type Metric string

const (
	MetricProfiles     Metric = "profiles"
	MetricTrips        Metric = "trips"
	MetricPublicGuides Metric = "public_guides"
	MetricPosts        Metric = "posts"
	MetricComments     Metric = "comments"
	MetricExpenses     Metric = "expenses"
)

var metricQueries = map[Metric]string{
	MetricProfiles:     `SELECT COUNT(*) FROM profiles`,
	MetricTrips:        `SELECT COUNT(*) FROM trips`,
	MetricPublicGuides: `SELECT COUNT(*) FROM trips WHERE is_public`,
	MetricPosts:        `SELECT COUNT(*) FROM posts`,
	MetricComments:     `SELECT COUNT(*) FROM comments`,
	MetricExpenses:     `SELECT COUNT(*) FROM expenses`,
}

// AnalyticsRepository runs admin dashboard queries
type AnalyticsRepository struct {
	db *pgxpool.Pool
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// Count returns the value of a metric
func (r *AnalyticsRepository) Count(ctx context.Context, m Metric) (int, error) {
	query, ok := metricQueries[m]
	if !ok {
		return 0, fmt.Errorf("unknown metric: %s", m)
	}
	var n int
	if err := r.db.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", m, err)
	}
	return n, nil
}

// SignupsSince counts profiles created after since
func (r *AnalyticsRepository) SignupsSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM profiles WHERE created_at >= $1`, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count signups: %w", err)
	}
	return n, nil
}
