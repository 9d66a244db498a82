package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"budget-tracker/internal/events"
	"budget-tracker/internal/models"
)

type createExpenseRequest struct {
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Amount      *float64 `json:"amount"`
	Category    string   `json:"category"`
	UserID      *int64   `json:"user_id"`
	Date        *string  `json:"date"`
}

// updateExpenseRequest keeps description raw so an explicit null can be told apart from an
// omitted field.
type updateExpenseRequest struct {
	Title       *string         `json:"title"`
	Description json.RawMessage `json:"description"`
	Amount      *float64        `json:"amount"`
	Category    *string         `json:"category"`
	Date        *string         `json:"date"`
}

// expenseResponse is the body of GET /api/expenses/{id}.
type expenseResponse struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Amount      float64         `json:"amount"`
	Category    models.Category `json:"category"`
}

// expenseDetail is an expense as listed under its owner.
type expenseDetail struct {
	expenseResponse
	Date   string `json:"date"`
	UserID *int64 `json:"user_id"`
}

func newExpenseResponse(e *models.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Amount:      e.Amount,
		Category:    e.Category,
	}
}

func newExpenseDetail(e *models.Expense) expenseDetail {
	return expenseDetail{
		expenseResponse: newExpenseResponse(e),
		Date:            e.DateString(),
		UserID:          e.UserID,
	}
}

// CreateExpense handles the creation of a new expense.
func (h *Handlers) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category := models.Category(req.Category)
	if !category.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid category")
		return
	}
	if req.Amount == nil {
		writeError(w, http.StatusBadRequest, "amount is required")
		return
	}

	e := &models.Expense{
		Title:       req.Title,
		Description: req.Description,
		Amount:      *req.Amount,
		Category:    category,
		UserID:      req.UserID,
	}
	if req.Date != nil {
		date, err := models.ParseDate(*req.Date)
		if err != nil {
			h.storageError(w, r, err, "")
			return
		}
		e.Date = date
	}

	if err := h.db.CreateExpense(r.Context(), e); err != nil {
		h.storageError(w, r, err, "")
		return
	}

	h.publish(r.Context(), events.New(events.ExpenseCreated, e.ID, e.UserID))
	writeJSON(w, http.StatusCreated, messageResponse{Message: "Expense created successfully", ID: e.ID})
}

// GetExpense returns a single expense.
func (h *Handlers) GetExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Expense not found")
	if !ok {
		return
	}

	e, err := h.db.GetExpense(r.Context(), id)
	if err != nil {
		h.storageError(w, r, err, "Expense not found")
		return
	}
	writeJSON(w, http.StatusOK, newExpenseResponse(e))
}

// UpdateExpense applies any subset of fields to an expense. Nothing is written unless
// every supplied field is valid. A missing expense is reported before invalid fields.
func (h *Handlers) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Expense not found")
	if !ok {
		return
	}

	var req updateExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.db.GetExpense(r.Context(), id); err != nil {
		h.storageError(w, r, err, "Expense not found")
		return
	}

	patch := models.ExpensePatch{
		Title:  req.Title,
		Amount: req.Amount,
	}
	if len(req.Description) > 0 {
		if bytes.Equal(req.Description, []byte("null")) {
			patch.ClearDescription = true
		} else {
			var desc string
			if err := json.Unmarshal(req.Description, &desc); err != nil {
				writeError(w, http.StatusBadRequest, "Invalid request payload")
				return
			}
			patch.Description = &desc
		}
	}
	if req.Category != nil {
		category := models.Category(*req.Category)
		if !category.Valid() {
			writeError(w, http.StatusBadRequest, "Invalid category")
			return
		}
		patch.Category = &category
	}
	if req.Date != nil {
		date, err := models.ParseDate(*req.Date)
		if err != nil {
			h.storageError(w, r, err, "")
			return
		}
		patch.Date = &date
	}

	updated, err := h.db.UpdateExpense(r.Context(), id, patch)
	if err != nil {
		h.storageError(w, r, err, "Expense not found")
		return
	}

	h.publish(r.Context(), events.New(events.ExpenseUpdated, updated.ID, updated.UserID))
	writeMessage(w, http.StatusOK, "Expense updated successfully")
}

// DeleteExpense removes an expense permanently.
func (h *Handlers) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Expense not found")
	if !ok {
		return
	}

	if err := h.db.DeleteExpense(r.Context(), id); err != nil {
		h.storageError(w, r, err, "Expense not found")
		return
	}

	h.publish(r.Context(), events.New(events.ExpenseDeleted, id, nil))
	writeMessage(w, http.StatusOK, "Expense deleted successfully")
}
