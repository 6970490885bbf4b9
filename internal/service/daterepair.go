package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mfarias/autolote/internal/dates"
	"github.com/mfarias/autolote/internal/repo"
)

// RepairStats summarizes one date-repair run.
type RepairStats struct {
	ExpensesSeen  int
	ExpensesFixed int
	VehiclesSeen  int
	VehiclesFixed int
}

// DateRepairService rewrites instants stored with legacy UTC-day semantics
// into canonical reference-zone midnights (see dates.Normalizer). It is a
// one-shot batch: run it once per collection cutover, after which the
// dual-range tolerance in the metrics read path can be retired.
//
// The pass is idempotent — reinterpreting an already-correct instant is a
// no-op, so a second run touches nothing.
type DateRepairService struct {
	vehicles repo.VehicleRepo
	expenses repo.ExpenseRepo
	norm     *dates.Normalizer
	log      *slog.Logger
}

// NewDateRepairService constructs a DateRepairService.
func NewDateRepairService(vehicles repo.VehicleRepo, expenses repo.ExpenseRepo, norm *dates.Normalizer, log *slog.Logger) *DateRepairService {
	return &DateRepairService{vehicles: vehicles, expenses: expenses, norm: norm, log: log}
}

// Run repairs expense dates, then vehicle purchase/sold dates, and returns
// counts of records seen and rewritten. It stops at the first storage error;
// already-repaired rows stay repaired, so the run can simply be restarted.
func (s *DateRepairService) Run(ctx context.Context) (RepairStats, error) {
	var stats RepairStats

	expenses, err := s.expenses.List(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("service.DateRepairService.Run: %w", err)
	}
	for _, e := range expenses {
		stats.ExpensesSeen++
		fixed := s.norm.ReinterpretStored(e.Date)
		if fixed.Equal(e.Date) {
			continue
		}
		if err := s.expenses.UpdateDate(ctx, e.ID, fixed); err != nil {
			return stats, fmt.Errorf("service.DateRepairService.Run: expense %s: %w", e.ID, err)
		}
		stats.ExpensesFixed++
	}
	s.log.Info("expenses repaired", "seen", stats.ExpensesSeen, "fixed", stats.ExpensesFixed)

	vehicles, err := s.vehicles.List(ctx, nil, true)
	if err != nil {
		return stats, fmt.Errorf("service.DateRepairService.Run: %w", err)
	}
	for _, v := range vehicles {
		stats.VehiclesSeen++

		purchase := s.norm.ReinterpretStored(v.PurchaseDate)
		changed := !purchase.Equal(v.PurchaseDate)

		sold := v.SoldDate
		if sold != nil {
			fixed := s.norm.ReinterpretStored(*sold)
			if !fixed.Equal(*sold) {
				sold = &fixed
				changed = true
			}
		}

		if !changed {
			continue
		}
		if err := s.vehicles.UpdateDates(ctx, v.ID, purchase, sold); err != nil {
			return stats, fmt.Errorf("service.DateRepairService.Run: vehicle %s: %w", v.ID, err)
		}
		stats.VehiclesFixed++
	}
	s.log.Info("vehicles repaired", "seen", stats.VehiclesSeen, "fixed", stats.VehiclesFixed)

	return stats, nil
}
