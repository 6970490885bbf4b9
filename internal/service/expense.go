package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mfarias/autolote/internal/dates"
	"github.com/mfarias/autolote/internal/domain"
	"github.com/mfarias/autolote/internal/repo"
)

// CreateExpenseInput carries the fields of an expense create request.
// DateYMD is a "YYYY-MM-DD" calendar date in the reference timezone.
type CreateExpenseInput struct {
	VehicleID uuid.UUID
	DateYMD   string
	Name      string
	Amount    float64
}

// ExpenseService implements business logic for Expense operations.
// It holds the vehicle repo as well because creating an expense requires
// verifying the referenced vehicle exists.
type ExpenseService struct {
	expenses repo.ExpenseRepo
	vehicles repo.VehicleRepo
	norm     *dates.Normalizer
}

// NewExpenseService constructs an ExpenseService backed by the provided repos
// and date normalizer.
func NewExpenseService(expenses repo.ExpenseRepo, vehicles repo.VehicleRepo, norm *dates.Normalizer) *ExpenseService {
	return &ExpenseService{expenses: expenses, vehicles: vehicles, norm: norm}
}

// Create validates the expense, verifies the referenced vehicle exists, then
// persists. Returns domain.ErrValidation on bad input, domain.ErrInvalidDate
// on a malformed date, and domain.ErrNotFound when the vehicle is absent.
func (s *ExpenseService) Create(ctx context.Context, in CreateExpenseInput) (domain.Expense, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Expense{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if in.DateYMD == "" {
		return domain.Expense{}, fmt.Errorf("%w: date is required", domain.ErrValidation)
	}

	date, err := s.norm.FromYMD(in.DateYMD)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("service.ExpenseService.Create: %w", err)
	}

	if _, err := s.vehicles.GetByID(ctx, in.VehicleID); err != nil {
		return domain.Expense{}, fmt.Errorf("service.ExpenseService.Create: %w", err)
	}

	result, err := s.expenses.Create(ctx, domain.Expense{
		VehicleID: in.VehicleID,
		Date:      date,
		Name:      strings.TrimSpace(in.Name),
		Amount:    in.Amount,
	})
	if err != nil {
		return domain.Expense{}, fmt.Errorf("service.ExpenseService.Create: %w", err)
	}
	return result, nil
}

// ListPaged returns one page of expenses, newest first, optionally filtered
// by vehicle, plus the total count for the filter.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ExpenseService) ListPaged(ctx context.Context, vehicleID *uuid.UUID, p domain.PaginationParams) ([]domain.Expense, int64, error) {
	expenses, total, err := s.expenses.ListPaged(ctx, vehicleID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ExpenseService.ListPaged: %w", err)
	}
	if expenses == nil {
		return []domain.Expense{}, total, nil
	}
	return expenses, total, nil
}

// Delete removes an expense by ID.
// Returns domain.ErrNotFound if the expense does not exist.
func (s *ExpenseService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.expenses.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.ExpenseService.Delete: %w", err)
	}
	return nil
}

// Summary returns the total expense amount per vehicle.
// Vehicles with no expenses are absent from the map.
func (s *ExpenseService) Summary(ctx context.Context) (map[uuid.UUID]float64, error) {
	totals, err := s.expenses.SumByVehicle(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExpenseService.Summary: %w", err)
	}
	return totals, nil
}
