package handlers

import (
	"net/http"
	"strconv"

	"recycle-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// LedgerHandler serves balances, rewards, expenses and their reports
type LedgerHandler struct {
	ledgerService *services.LedgerService
	reportService *services.ReportService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledgerService *services.LedgerService, reportService *services.ReportService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService, reportService: reportService}
}

// Balance handles GET /api/v1/users/balance
func (h *LedgerHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	summary, err := h.reportService.BalanceSummary(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get balance")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

type rewardRequest struct {
	WasteTypeID int64 `json:"waste_type_id"`
	Points      int64 `json:"points"`
}

// CreateReward handles POST /api/v1/users/rewards
func (h *LedgerHandler) CreateReward(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req rewardRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reward, err := h.ledgerService.CreateReward(r.Context(), userID, req.WasteTypeID, req.Points)
	if err != nil {
		respondServiceError(w, r, err, "Failed to create reward")
		return
	}
	respondJSON(w, http.StatusCreated, reward)
}

// WeeklyData handles GET /api/v1/users/weekly-data
func (h *LedgerHandler) WeeklyData(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	days, err := h.reportService.WeeklyData(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get weekly data")
		return
	}
	respondJSON(w, http.StatusOK, days)
}

// MonthlyTransactions handles GET /api/v1/users/monthly-transactions/{year}/{month}
func (h *LedgerHandler) MonthlyTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		respondError(w, "Invalid year", http.StatusBadRequest)
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		respondError(w, "Invalid month", http.StatusBadRequest)
		return
	}

	txs, err := h.reportService.MonthlyTransactions(r.Context(), userID, year, month)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get monthly transactions")
		return
	}
	respondJSON(w, http.StatusOK, txs)
}

// Insights handles GET /api/v1/insights
func (h *LedgerHandler) Insights(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	insights, err := h.reportService.Insights(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get insights")
		return
	}
	respondJSON(w, http.StatusOK, insights)
}

// ListExpenses handles GET /api/v1/expenses
func (h *LedgerHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	skip, limit, ok := pagination(w, r)
	if !ok {
		return
	}

	expenses, err := h.ledgerService.ListExpenses(r.Context(), userID, skip, limit)
	if err != nil {
		respondServiceError(w, r, err, "Failed to list expenses")
		return
	}
	respondJSON(w, http.StatusOK, expenses)
}

type expenseRequest struct {
	Description string `json:"description"`
	Points      int64  `json:"points"`
}

// CreateExpense handles POST /api/v1/expenses
func (h *LedgerHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req expenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	expense, err := h.ledgerService.CreateExpense(r.Context(), userID, req.Description, req.Points)
	if err != nil {
		respondServiceError(w, r, err, "Failed to create expense")
		return
	}
	respondJSON(w, http.StatusCreated, expense)
}

// UpdateExpense handles PUT /api/v1/expenses/{expense_id}
func (h *LedgerHandler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	expenseID, ok := pathID(w, r, "expense_id")
	if !ok {
		return
	}

	var req services.ExpenseUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	expense, err := h.ledgerService.UpdateExpense(r.Context(), userID, expenseID, req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update expense")
		return
	}
	respondJSON(w, http.StatusOK, expense)
}

// DeleteExpense handles DELETE /api/v1/expenses/{expense_id}
func (h *LedgerHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	expenseID, ok := pathID(w, r, "expense_id")
	if !ok {
		return
	}

	if err := h.ledgerService.DeleteExpense(r.Context(), userID, expenseID); err != nil {
		respondServiceError(w, r, err, "Failed to delete expense")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExpenseStatistics handles GET /api/v1/expenses/statistics?period=
func (h *LedgerHandler) ExpenseStatistics(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = services.PeriodMonth
	}

	stats, err := h.reportService.ExpenseStatistics(r.Context(), userID, period)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get expense statistics")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
