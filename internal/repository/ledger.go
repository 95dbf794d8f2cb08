package repository

import (
	"context"
	"fmt"

	"recycle-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

// LedgerRepository writes rewards and expenses together with the cached user balance.
// Every mutation locks the user row first, then the ledger row, in one transaction.
type LedgerRepository struct {
	db DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func lockUser(ctx context.Context, tx pgx.Tx, userID int64) error {
	var id int64
	err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&id)
	if err != nil {
		return wrapError(err, "lock user", fmt.Sprintf("user %d", userID))
	}
	return nil
}

func adjustBalance(ctx context.Context, tx pgx.Tx, userID, delta int64) (int64, error) {
	var balance int64
	err := tx.QueryRow(ctx,
		`UPDATE users SET balance = balance + $2 WHERE id = $1 RETURNING balance`,
		userID, delta,
	).Scan(&balance)
	if err != nil {
		return 0, wrapError(err, "adjust balance", fmt.Sprintf("user %d", userID))
	}
	return balance, nil
}

// CreateReward inserts a reward and credits its points. It returns the new balance.
func (r *LedgerRepository) CreateReward(ctx context.Context, userID, wasteTypeID, points int64) (*models.Reward, int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockUser(ctx, tx, userID); err != nil {
		return nil, 0, err
	}

	reward := &models.Reward{UserID: userID, WasteTypeID: wasteTypeID, Points: points}
	err = tx.QueryRow(ctx, `SELECT name FROM waste_types WHERE id = $1`, wasteTypeID).Scan(&reward.WasteType)
	if err != nil {
		return nil, 0, wrapError(err, "get waste type", fmt.Sprintf("waste type %d", wasteTypeID))
	}

	query := `
		INSERT INTO rewards (user_id, waste_type_id, points)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := tx.QueryRow(ctx, query, userID, wasteTypeID, points).Scan(&reward.ID, &reward.CreatedAt); err != nil {
		return nil, 0, wrapError(err, "create reward", "reward")
	}

	balance, err := adjustBalance(ctx, tx, userID, points)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("failed to commit reward: %w", err)
	}
	return reward, balance, nil
}

// CreateExpense inserts an expense and debits its points. It returns the new balance.
func (r *LedgerRepository) CreateExpense(ctx context.Context, userID int64, description string, points int64) (*models.Expense, int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockUser(ctx, tx, userID); err != nil {
		return nil, 0, err
	}

	expense := &models.Expense{UserID: userID, Description: description, Points: points}
	query := `
		INSERT INTO expenses (user_id, description, points)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := tx.QueryRow(ctx, query, userID, description, points).Scan(&expense.ID, &expense.CreatedAt); err != nil {
		return nil, 0, wrapError(err, "create expense", "expense")
	}

	balance, err := adjustBalance(ctx, tx, userID, -points)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("failed to commit expense: %w", err)
	}
	return expense, balance, nil
}

// GetExpense retrieves an expense by ID
func (r *LedgerRepository) GetExpense(ctx context.Context, id int64) (*models.Expense, error) {
	query := `SELECT id, user_id, description, points, created_at FROM expenses WHERE id = $1`
	var e models.Expense
	err := r.db.QueryRow(ctx, query, id).Scan(&e.ID, &e.UserID, &e.Description, &e.Points, &e.CreatedAt)
	if err != nil {
		return nil, wrapError(err, "get expense", fmt.Sprintf("expense %d", id))
	}
	return &e, nil
}

// UpdateExpense rewrites an expense of userID and moves the balance by the change in points.
func (r *LedgerRepository) UpdateExpense(ctx context.Context, userID, expenseID int64, description *string, points *int64) (*models.Expense, int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockUser(ctx, tx, userID); err != nil {
		return nil, 0, err
	}

	var e models.Expense
	err = tx.QueryRow(ctx, `
		SELECT id, user_id, description, points, created_at
		FROM expenses
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`, expenseID, userID).Scan(&e.ID, &e.UserID, &e.Description, &e.Points, &e.CreatedAt)
	if err != nil {
		return nil, 0, wrapError(err, "lock expense", fmt.Sprintf("expense %d", expenseID))
	}

	oldPoints := e.Points
	if description != nil {
		e.Description = *description
	}
	if points != nil {
		e.Points = *points
	}

	if _, err := tx.Exec(ctx,
		`UPDATE expenses SET description = $2, points = $3 WHERE id = $1`,
		e.ID, e.Description, e.Points,
	); err != nil {
		return nil, 0, wrapError(err, "update expense", "expense")
	}

	balance, err := adjustBalance(ctx, tx, userID, oldPoints-e.Points)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("failed to commit expense update: %w", err)
	}
	return &e, balance, nil
}

// DeleteExpense removes an expense of userID and gives its points back.
func (r *LedgerRepository) DeleteExpense(ctx context.Context, userID, expenseID int64) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockUser(ctx, tx, userID); err != nil {
		return 0, err
	}

	var points int64
	err = tx.QueryRow(ctx,
		`DELETE FROM expenses WHERE id = $1 AND user_id = $2 RETURNING points`,
		expenseID, userID,
	).Scan(&points)
	if err != nil {
		return 0, wrapError(err, "delete expense", fmt.Sprintf("expense %d", expenseID))
	}

	balance, err := adjustBalance(ctx, tx, userID, points)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit expense delete: %w", err)
	}
	return balance, nil
}

// ListExpenses returns a page of a user's expenses, newest first
func (r *LedgerRepository) ListExpenses(ctx context.Context, userID int64, skip, limit int) ([]*models.Expense, error) {
	query := `
		SELECT id, user_id, description, points, created_at
		FROM expenses
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		OFFSET $2 LIMIT $3
	`
	return queryExpenses(ctx, r.db, query, userID, skip, limit)
}

// RecentExpenses returns the latest expenses of a user
func (r *LedgerRepository) RecentExpenses(ctx context.Context, userID int64, limit int) ([]*models.Expense, error) {
	return r.ListExpenses(ctx, userID, 0, limit)
}

// RecentRewards returns the latest rewards of a user
func (r *LedgerRepository) RecentRewards(ctx context.Context, userID int64, limit int) ([]*models.Reward, error) {
	query := `
		SELECT r.id, r.user_id, r.waste_type_id, w.name, r.points, r.created_at
		FROM rewards r
		JOIN waste_types w ON w.id = r.waste_type_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $2
	`
	return queryRewards(ctx, r.db, query, userID, limit)
}

// GetBalance returns the cached balance of a user
func (r *LedgerRepository) GetBalance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx, `SELECT balance FROM users WHERE id = $1`, userID).Scan(&balance)
	if err != nil {
		return 0, wrapError(err, "get balance", fmt.Sprintf("user %d", userID))
	}
	return balance, nil
}

// SumLedger recomputes the balance of a user from the ledger rows
func (r *LedgerRepository) SumLedger(ctx context.Context, userID int64) (int64, error) {
	query := `
		SELECT
			COALESCE((SELECT SUM(points) FROM rewards WHERE user_id = $1), 0)
			- COALESCE((SELECT SUM(points) FROM expenses WHERE user_id = $1), 0)
	`
	var sum int64
	if err := r.db.QueryRow(ctx, query, userID).Scan(&sum); err != nil {
		return 0, wrapError(err, "sum ledger", "user")
	}
	return sum, nil
}

func queryExpenses(ctx context.Context, db DB, query string, args ...any) ([]*models.Expense, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapError(err, "list expenses", "expense")
	}
	defer rows.Close()

	expenses := make([]*models.Expense, 0)
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.Description, &e.Points, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

func queryRewards(ctx context.Context, db DB, query string, args ...any) ([]*models.Reward, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapError(err, "list rewards", "reward")
	}
	defer rows.Close()

	rewards := make([]*models.Reward, 0)
	for rows.Next() {
		var rw models.Reward
		if err := rows.Scan(&rw.ID, &rw.UserID, &rw.WasteTypeID, &rw.WasteType, &rw.Points, &rw.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reward: %w", err)
		}
		rewards = append(rewards, &rw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rewards: %w", err)
	}
	return rewards, nil
}
