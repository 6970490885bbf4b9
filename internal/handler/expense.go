package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mfarias/autolote/internal/domain"
	"github.com/mfarias/autolote/internal/service"
)

// pagination is the paging block of a paginated list response.
type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// expenseListResponse is the body of GET /api/expenses.
type expenseListResponse struct {
	Data       []domain.Expense `json:"data"`
	Pagination pagination       `json:"pagination"`
}

// ListExpenses handles GET /api/expenses.
// Supports ?vehicleId= to scope to one vehicle, and ?page=/?limit= paging
// (defaults: page=1, limit=20, max=100). Newest expenses first.
func (s *Server) ListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var vehicleID *uuid.UUID
	if raw := q.Get("vehicleId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(w, "vehicleId must be a valid UUID")
			return
		}
		vehicleID = &id
	}

	page, err := queryInt(q.Get("page"))
	if err != nil {
		badRequest(w, "page must be an integer")
		return
	}
	limit, err := queryInt(q.Get("limit"))
	if err != nil {
		badRequest(w, "limit must be an integer")
		return
	}
	params := domain.NewPaginationParams(page, limit)

	expenses, total, err := s.expenses.ListPaged(r.Context(), vehicleID, params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expenseListResponse{
		Data: expenses,
		Pagination: pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}

// createExpenseRequest is the body of POST /api/expenses.
type createExpenseRequest struct {
	VehicleID uuid.UUID `json:"vehicleId"`
	Date      string    `json:"date"`
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
}

// CreateExpense handles POST /api/expenses.
func (s *Server) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "request body must be valid JSON")
		return
	}

	created, err := s.expenses.Create(r.Context(), service.CreateExpenseInput{
		VehicleID: req.VehicleID,
		DateYMD:   req.Date,
		Name:      req.Name,
		Amount:    req.Amount,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// DeleteExpense handles DELETE /api/expenses/{id}.
func (s *Server) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "id must be a valid UUID")
		return
	}

	if err := s.expenses.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExpenseSummary handles GET /api/expenses/summary.
// It returns {"<vehicleId>": totalAmount} for every vehicle with expenses.
func (s *Server) ExpenseSummary(w http.ResponseWriter, r *http.Request) {
	sums, err := s.expenses.Summary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make(map[string]float64, len(sums))
	for id, total := range sums {
		out[id.String()] = total
	}
	writeJSON(w, http.StatusOK, out)
}

// queryInt parses an optional integer query parameter.
// An empty string yields a nil pointer so pagination defaults apply.
func queryInt(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
