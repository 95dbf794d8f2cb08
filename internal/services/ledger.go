package services

import (
	"context"
	"fmt"
	"strings"

	"recycle-backend/internal/apperror"
	"recycle-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// Ledger entry kinds reported to the recorder
const (
	EntryReward        = "reward"
	EntryExpense       = "expense"
	EntryExpenseUpdate = "expense_update"
	EntryExpenseDelete = "expense_delete"
)

// LedgerStore persists ledger rows together with the cached balance
type LedgerStore interface {
	CreateReward(ctx context.Context, userID, wasteTypeID, points int64) (*models.Reward, int64, error)
	CreateExpense(ctx context.Context, userID int64, description string, points int64) (*models.Expense, int64, error)
	GetExpense(ctx context.Context, id int64) (*models.Expense, error)
	UpdateExpense(ctx context.Context, userID, expenseID int64, description *string, points *int64) (*models.Expense, int64, error)
	DeleteExpense(ctx context.Context, userID, expenseID int64) (int64, error)
	ListExpenses(ctx context.Context, userID int64, skip, limit int) ([]*models.Expense, error)
	RecentExpenses(ctx context.Context, userID int64, limit int) ([]*models.Expense, error)
	RecentRewards(ctx context.Context, userID int64, limit int) ([]*models.Reward, error)
	GetBalance(ctx context.Context, userID int64) (int64, error)
	SumLedger(ctx context.Context, userID int64) (int64, error)
}

// LedgerRecorder counts committed ledger entries
type LedgerRecorder interface {
	RecordLedgerEntry(kind string)
}

// ExpenseUpdate holds the optional fields of an expense change
type ExpenseUpdate struct {
	Description *string `json:"description"`
	Points      *int64  `json:"points"`
}

// LedgerService is the only writer of rewards, expenses and balances
type LedgerService struct {
	store    LedgerStore
	notifier BalanceNotifier
	recorder LedgerRecorder
}

// NewLedgerService creates a new ledger service. notifier and recorder may be nil.
func NewLedgerService(store LedgerStore, notifier BalanceNotifier, recorder LedgerRecorder) *LedgerService {
	return &LedgerService{store: store, notifier: notifier, recorder: recorder}
}

// CreateReward grants points for a waste type and credits the balance atomically
func (s *LedgerService) CreateReward(ctx context.Context, userID, wasteTypeID, points int64) (*models.Reward, error) {
	if points <= 0 {
		return nil, apperror.Invalid("points must be positive")
	}

	reward, balance, err := s.store.CreateReward(ctx, userID, wasteTypeID, points)
	if err != nil {
		return nil, fmt.Errorf("failed to create reward: %w", err)
	}

	s.committed(ctx, EntryReward, userID, balance)
	return reward, nil
}

// CreateExpense records spent points and debits the balance atomically.
// The balance may become negative.
func (s *LedgerService) CreateExpense(ctx context.Context, userID int64, description string, points int64) (*models.Expense, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperror.Invalid("description is required")
	}
	if points <= 0 {
		return nil, apperror.Invalid("points must be positive")
	}

	expense, balance, err := s.store.CreateExpense(ctx, userID, description, points)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	s.committed(ctx, EntryExpense, userID, balance)
	return expense, nil
}

// UpdateExpense changes an expense owned by userID and moves the balance by the difference
func (s *LedgerService) UpdateExpense(ctx context.Context, userID, expenseID int64, upd ExpenseUpdate) (*models.Expense, error) {
	if upd.Description != nil {
		d := strings.TrimSpace(*upd.Description)
		if d == "" {
			return nil, apperror.Invalid("description must not be empty")
		}
		upd.Description = &d
	}
	if upd.Points != nil && *upd.Points <= 0 {
		return nil, apperror.Invalid("points must be positive")
	}

	if err := s.assertExpenseOwner(ctx, userID, expenseID); err != nil {
		return nil, err
	}

	expense, balance, err := s.store.UpdateExpense(ctx, userID, expenseID, upd.Description, upd.Points)
	if err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	s.committed(ctx, EntryExpenseUpdate, userID, balance)
	return expense, nil
}

// DeleteExpense removes an expense owned by userID and returns its points to the balance
func (s *LedgerService) DeleteExpense(ctx context.Context, userID, expenseID int64) error {
	if err := s.assertExpenseOwner(ctx, userID, expenseID); err != nil {
		return err
	}

	balance, err := s.store.DeleteExpense(ctx, userID, expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	s.committed(ctx, EntryExpenseDelete, userID, balance)
	return nil
}

func (s *LedgerService) assertExpenseOwner(ctx context.Context, userID, expenseID int64) error {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	return apperror.AssertOwner("expense", expense.UserID, userID)
}

// ListExpenses returns a page of the user's expenses
func (s *LedgerService) ListExpenses(ctx context.Context, userID int64, skip, limit int) ([]*models.Expense, error) {
	if err := validatePage(skip, limit); err != nil {
		return nil, err
	}
	return s.store.ListExpenses(ctx, userID, skip, limit)
}

// ComputeBalance returns the cached balance
func (s *LedgerService) ComputeBalance(ctx context.Context, userID int64) (int64, error) {
	return s.store.GetBalance(ctx, userID)
}

// RecomputeBalance sums the ledger rows independently of the cache
func (s *LedgerService) RecomputeBalance(ctx context.Context, userID int64) (int64, error) {
	return s.store.SumLedger(ctx, userID)
}

// VerifyBalance reports an error when the cached balance differs from the ledger sum
func (s *LedgerService) VerifyBalance(ctx context.Context, userID int64) error {
	cached, err := s.ComputeBalance(ctx, userID)
	if err != nil {
		return err
	}
	summed, err := s.RecomputeBalance(ctx, userID)
	if err != nil {
		return err
	}
	if cached != summed {
		return fmt.Errorf("balance drift for user %d: cached %d, ledger %d", userID, cached, summed)
	}
	return nil
}

// committed runs the post-commit side effects of a ledger change
func (s *LedgerService) committed(ctx context.Context, kind string, userID, balance int64) {
	log.Info().Str("kind", kind).Int64("user_id", userID).Int64("balance", balance).Msg("Ledger entry committed")
	if s.recorder != nil {
		s.recorder.RecordLedgerEntry(kind)
	}
	if s.notifier != nil {
		s.notifier.BalanceChanged(ctx, userID, balance)
	}
}
