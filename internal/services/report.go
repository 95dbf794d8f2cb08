package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"recycle-backend/internal/apperror"
	"recycle-backend/internal/models"
)

const (
	weekDays      = 7
	recentEntries = 5
	dayLayout     = "2006-01-02"
)

// Statistic periods
const (
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// ReportStore runs the aggregation queries
type ReportStore interface {
	DailyTotals(ctx context.Context, userID int64, from, to time.Time) (rewards, expenses map[string]int64, err error)
	RewardsBetween(ctx context.Context, userID int64, from, to time.Time) ([]*models.Reward, error)
	ExpensesBetween(ctx context.Context, userID int64, from, to time.Time) ([]*models.Expense, error)
	ExpenseTotals(ctx context.Context, userID int64, since time.Time) (total, count int64, err error)
}

// ReportService builds the read-only views over the ledger
type ReportService struct {
	reports ReportStore
	ledger  LedgerStore
	now     func() time.Time
}

// NewReportService creates a new report service
func NewReportService(reports ReportStore, ledger LedgerStore) *ReportService {
	return &ReportService{reports: reports, ledger: ledger, now: time.Now}
}

// WeeklyData returns exactly seven zero-filled rows, oldest first, ending today in UTC
func (s *ReportService) WeeklyData(ctx context.Context, userID int64) ([]models.DailyPoints, error) {
	today := truncateDay(s.now())
	from := today.AddDate(0, 0, -(weekDays - 1))
	to := today.AddDate(0, 0, 1)

	rewards, expenses, err := s.reports.DailyTotals(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return buildWeekly(from, rewards, expenses), nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func buildWeekly(from time.Time, rewards, expenses map[string]int64) []models.DailyPoints {
	days := make([]models.DailyPoints, 0, weekDays)
	for i := 0; i < weekDays; i++ {
		day := from.AddDate(0, 0, i).Format(dayLayout)
		days = append(days, models.DailyPoints{
			Date:     day,
			Rewards:  rewards[day],
			Expenses: expenses[day],
		})
	}
	return days
}

// MonthlyTransactions lists the rewards and expenses of one calendar month, newest first
func (s *ReportService) MonthlyTransactions(ctx context.Context, userID int64, year, month int) ([]models.Transaction, error) {
	if month < 1 || month > 12 {
		return nil, apperror.Invalid("month must be between 1 and 12")
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	rewards, err := s.reports.RewardsBetween(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	expenses, err := s.reports.ExpensesBetween(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return mergeTransactions(rewards, expenses), nil
}

func mergeTransactions(rewards []*models.Reward, expenses []*models.Expense) []models.Transaction {
	txs := make([]models.Transaction, 0, len(rewards)+len(expenses))
	for _, r := range rewards {
		txs = append(txs, models.Transaction{
			Type:        models.TransactionReward,
			Description: r.WasteType,
			Points:      r.Points,
			CreatedAt:   r.CreatedAt,
		})
	}
	for _, e := range expenses {
		txs = append(txs, models.Transaction{
			Type:        models.TransactionExpense,
			Description: e.Description,
			Points:      e.Points,
			CreatedAt:   e.CreatedAt,
		})
	}
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
	return txs
}

// ExpenseStatistics sums and averages expenses over the trailing 30 or 365 days
func (s *ReportService) ExpenseStatistics(ctx context.Context, userID int64, period string) (*models.ExpenseStatistics, error) {
	var days int
	switch period {
	case PeriodMonth:
		days = 30
	case PeriodYear:
		days = 365
	default:
		return nil, apperror.Invalid("period must be %q or %q", PeriodMonth, PeriodYear)
	}

	since := s.now().UTC().AddDate(0, 0, -days)
	total, count, err := s.reports.ExpenseTotals(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	stats := &models.ExpenseStatistics{Total: total}
	if count > 0 {
		stats.Average = float64(total) / float64(count)
	}
	return stats, nil
}

// Insights returns the recomputed balance with the latest expenses
func (s *ReportService) Insights(ctx context.Context, userID int64) (*models.UserInsights, error) {
	balance, err := s.ledger.SumLedger(ctx, userID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.ledger.RecentExpenses(ctx, userID, recentEntries)
	if err != nil {
		return nil, err
	}

	insights := &models.UserInsights{
		Balance:  balance,
		Expenses: make([]models.ExpenseInsight, 0, len(expenses)),
	}
	for _, e := range expenses {
		insights.Expenses = append(insights.Expenses, models.ExpenseInsight{
			Item:      e.Description,
			Statistic: fmt.Sprintf("%d pts", e.Points),
		})
	}
	return insights, nil
}

// BalanceSummary returns the cached balance with the latest rewards and expenses
func (s *ReportService) BalanceSummary(ctx context.Context, userID int64) (*models.BalanceSummary, error) {
	balance, err := s.ledger.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	rewards, err := s.ledger.RecentRewards(ctx, userID, recentEntries)
	if err != nil {
		return nil, err
	}
	expenses, err := s.ledger.RecentExpenses(ctx, userID, recentEntries)
	if err != nil {
		return nil, err
	}
	return &models.BalanceSummary{Balance: balance, Rewards: rewards, Expenses: expenses}, nil
}
