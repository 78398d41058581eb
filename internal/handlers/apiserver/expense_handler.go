package apiserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"spendmate/internal/middleware"
	"spendmate/internal/services"
)

// ExpenseHandler bundles the expense HTTP handlers.
type ExpenseHandler struct {
	ExpenseService services.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler instance.
func NewExpenseHandler(expenseService services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{ExpenseService: expenseService}
}

// ExpensePayload is the body for creating or updating an expense.
type ExpensePayload struct {
	Amount      float64    `json:"amount" validate:"required,gt=0"`
	Description string     `json:"description" validate:"max=255"`
	CategoryID  uint       `json:"categoryId" validate:"required,gt=0"`
	SpentAt     *time.Time `json:"spentAt,omitempty"`
}

// CreateExpense handles POST /api/v1/expenses.
func (h *ExpenseHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var payload ExpensePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := validate.Struct(payload); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var spentAt time.Time
	if payload.SpentAt != nil {
		spentAt = *payload.SpentAt
	}

	expense, err := h.ExpenseService.Create(r.Context(), userID, payload.Amount, payload.Description, payload.CategoryID, spentAt)
	if err != nil {
		writeExpenseError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, expense)
}

// UpdateExpense handles PUT /api/v1/expenses/{expenseID}.
func (h *ExpenseHandler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	expenseID, ok := parseUintVar(w, r, "expenseID")
	if !ok {
		return
	}

	var payload ExpensePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := validate.Struct(payload); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var spentAt time.Time
	if payload.SpentAt != nil {
		spentAt = *payload.SpentAt
	}

	expense, err := h.ExpenseService.Update(r.Context(), userID, expenseID, payload.Amount, payload.Description, payload.CategoryID, spentAt)
	if err != nil {
		writeExpenseError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, expense)
}

// DeleteExpense handles DELETE /api/v1/expenses/{expenseID}.
func (h *ExpenseHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	expenseID, ok := parseUintVar(w, r, "expenseID")
	if !ok {
		return
	}

	if err := h.ExpenseService.Delete(r.Context(), userID, expenseID); err != nil {
		writeExpenseError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "expense deleted"})
}

// ListExpenses handles GET /api/v1/expenses.
func (h *ExpenseHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	expenses, err := h.ExpenseService.List(r.Context(), userID)
	if err != nil {
		writeExpenseError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, expenses)
}

// ListCategories handles GET /api/v1/categories.
func (h *ExpenseHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.ExpenseService.Categories(r.Context())
	if err != nil {
		writeJSONError(w, "failed to load categories", http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, http.StatusOK, categories)
}

// parseUintVar extracts a positive numeric path variable, writing a 400 on failure.
func parseUintVar(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	raw := mux.Vars(r)[name]
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || parsed == 0 {
		writeJSONError(w, "invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return uint(parsed), true
}

// writeExpenseError maps expense service errors onto HTTP statuses.
func writeExpenseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrExpenseNotFound),
		errors.Is(err, services.ErrCategoryNotFound):
		writeJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrInvalidAmount):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		writeJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}
