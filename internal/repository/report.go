package repository

import (
	"context"
	"fmt"
	"time"

	"recycle-backend/internal/models"
)

// ReportRepository runs the read-only aggregation queries over the ledger
type ReportRepository struct {
	db DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// DailyTotals sums reward and expense points per UTC day in [from, to).
// Days without entries are absent from the maps.
func (r *ReportRepository) DailyTotals(ctx context.Context, userID int64, from, to time.Time) (rewards, expenses map[string]int64, err error) {
	rewards, err = r.dailyTotals(ctx, "rewards", userID, from, to)
	if err != nil {
		return nil, nil, err
	}
	expenses, err = r.dailyTotals(ctx, "expenses", userID, from, to)
	if err != nil {
		return nil, nil, err
	}
	return rewards, expenses, nil
}

func (r *ReportRepository) dailyTotals(ctx context.Context, table string, userID int64, from, to time.Time) (map[string]int64, error) {
	query := fmt.Sprintf(`
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, SUM(points)
		FROM %s
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		GROUP BY day
	`, table)
	rows, err := r.db.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum %s per day: %w", table, err)
	}
	defer rows.Close()

	totals := make(map[string]int64)
	for rows.Next() {
		var day string
		var sum int64
		if err := rows.Scan(&day, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan daily total: %w", err)
		}
		totals[day] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily totals: %w", err)
	}
	return totals, nil
}

// RewardsBetween lists rewards created in [from, to)
func (r *ReportRepository) RewardsBetween(ctx context.Context, userID int64, from, to time.Time) ([]*models.Reward, error) {
	query := `
		SELECT r.id, r.user_id, r.waste_type_id, w.name, r.points, r.created_at
		FROM rewards r
		JOIN waste_types w ON w.id = r.waste_type_id
		WHERE r.user_id = $1 AND r.created_at >= $2 AND r.created_at < $3
		ORDER BY r.created_at DESC
	`
	return queryRewards(ctx, r.db, query, userID, from, to)
}

// ExpensesBetween lists expenses created in [from, to)
func (r *ReportRepository) ExpensesBetween(ctx context.Context, userID int64, from, to time.Time) ([]*models.Expense, error) {
	query := `
		SELECT id, user_id, description, points, created_at
		FROM expenses
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at DESC
	`
	return queryExpenses(ctx, r.db, query, userID, from, to)
}

// ExpenseTotals returns the sum and number of expenses created since the given time
func (r *ReportRepository) ExpenseTotals(ctx context.Context, userID int64, since time.Time) (total, count int64, err error) {
	query := `
		SELECT COALESCE(SUM(points), 0), COUNT(*)
		FROM expenses
		WHERE user_id = $1 AND created_at >= $2
	`
	if err := r.db.QueryRow(ctx, query, userID, since).Scan(&total, &count); err != nil {
		return 0, 0, fmt.Errorf("failed to compute expense totals: %w", err)
	}
	return total, count, nil
}
