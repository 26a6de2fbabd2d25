package handlers

import (
	"net/http"

	"tripshare-backend/internal/middleware"
	"tripshare-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// ExpenseHandler handles expense and settlement HTTP requests
type ExpenseHandler struct {
	expenseService *services.ExpenseService
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(expenseService *services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// ListExpenses handles GET /api/v1/trips/{trip_id}/expenses
func (h *ExpenseHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.expenseService.List(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "trip_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to list expenses")
		return
	}
	respondJSON(w, http.StatusOK, expenses)
}

// CreateExpense handles POST /api/v1/trips/{trip_id}/expenses
func (h *ExpenseHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req services.ExpenseInput
	if !decodeJSON(w, r, &req) {
		return
	}

	expense, err := h.expenseService.Create(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "trip_id"), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to create expense")
		return
	}
	respondJSON(w, http.StatusCreated, expense)
}

// UpdateExpense handles PATCH /api/v1/trips/{trip_id}/expenses/{expense_id}
func (h *ExpenseHandler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req services.ExpenseInput
	if !decodeJSON(w, r, &req) {
		return
	}

	expense, err := h.expenseService.Update(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "trip_id"), chi.URLParam(r, "expense_id"), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update expense")
		return
	}
	respondJSON(w, http.StatusOK, expense)
}

// DeleteExpense handles DELETE /api/v1/trips/{trip_id}/expenses/{expense_id}
func (h *ExpenseHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	err := h.expenseService.Delete(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "trip_id"), chi.URLParam(r, "expense_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to delete expense")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordSettlement handles POST /api/v1/trips/{trip_id}/settlements
func (h *ExpenseHandler) RecordSettlement(w http.ResponseWriter, r *http.Request) {
	var req services.SettlementInput
	if !decodeJSON(w, r, &req) {
		return
	}

	settlement, err := h.expenseService.RecordSettlement(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "trip_id"), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to record settlement")
		return
	}
	respondJSON(w, http.StatusCreated, settlement)
}

// ListSettlements handles GET /api/v1/trips/{trip_id}/settlements
func (h *ExpenseHandler) ListSettlements(w http.ResponseWriter, r *http.Request) {
	settlements, err := h.expenseService.ListSettlements(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "trip_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to list settlements")
		return
	}
	respondJSON(w, http.StatusOK, settlements)
}

// GetBalances handles GET /api/v1/trips/{trip_id}/balances
func (h *ExpenseHandler) GetBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.expenseService.Balances(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "trip_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to compute balances")
		return
	}
	respondJSON(w, http.StatusOK, balances)
}
