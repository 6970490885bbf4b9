package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/mfarias/autolote/internal/dates"
	"github.com/mfarias/autolote/internal/domain"
	"github.com/mfarias/autolote/internal/repo"
)

// MetricsService computes the portfolio financial summary.
// It loads a request-scoped snapshot of vehicles and expenses and runs the
// pure aggregation over it; nothing here mutates storage.
type MetricsService struct {
	vehicles repo.VehicleRepo
	expenses repo.ExpenseRepo
	norm     *dates.Normalizer
}

// NewMetricsService constructs a MetricsService backed by the provided repos
// and date normalizer.
func NewMetricsService(vehicles repo.VehicleRepo, expenses repo.ExpenseRepo, norm *dates.Normalizer) *MetricsService {
	return &MetricsService{vehicles: vehicles, expenses: expenses, norm: norm}
}

// Report computes the financial summary for an optional date range and an
// optional single vehicle. startYMD and endYMD are "YYYY-MM-DD" strings; an
// empty startYMD means no range (full history), an empty endYMD defaults to
// startYMD. Returns domain.ErrInvalidDate if a supplied bound is unparseable.
func (s *MetricsService) Report(ctx context.Context, startYMD, endYMD string, vehicleID *uuid.UUID) (domain.MetricsReport, error) {
	var pair *dates.Pair
	if startYMD != "" {
		p, err := s.norm.RangePair(startYMD, endYMD)
		if err != nil {
			return domain.MetricsReport{}, fmt.Errorf("service.MetricsService.Report: %w", err)
		}
		pair = &p
	}

	vehicles, err := s.vehicles.List(ctx, vehicleID, true)
	if err != nil {
		return domain.MetricsReport{}, fmt.Errorf("service.MetricsService.Report: %w", err)
	}

	// Expenses scoped to the range feed the operating figures; the unscoped
	// set feeds lifetime investment. With no range the two sets coincide.
	expensesAll, err := s.expenses.List(ctx, vehicleID)
	if err != nil {
		return domain.MetricsReport{}, fmt.Errorf("service.MetricsService.Report: %w", err)
	}
	expensesInRange := expensesAll
	if pair != nil {
		expensesInRange, err = s.expenses.ListInEitherRange(ctx, vehicleID, *pair)
		if err != nil {
			return domain.MetricsReport{}, fmt.Errorf("service.MetricsService.Report: %w", err)
		}
	}

	filters := domain.MetricsFilters{StartDate: startYMD, EndDate: endYMD}
	if filters.EndDate == "" {
		filters.EndDate = startYMD
	}
	if vehicleID != nil {
		id := vehicleID.String()
		filters.VehicleID = &id
	}

	return ComputeReport(vehicles, expensesInRange, expensesAll, pair, filters), nil
}

// ComputeReport is the pure aggregation over an in-memory snapshot.
// pair is nil when no range was requested, in which case every purchase and
// sale counts as in range. Identical inputs always yield identical outputs.
func ComputeReport(vehicles []domain.Vehicle, expensesInRange, expensesAll []domain.Expense, pair *dates.Pair, filters domain.MetricsFilters) domain.MetricsReport {
	opByVehRange := sumByVehicle(expensesInRange)
	opByVehAll := sumByVehicle(expensesAll)

	report := domain.MetricsReport{
		PerVehicle: make([]domain.VehicleMetrics, 0, len(vehicles)),
		Filters:    filters,
	}

	var (
		soldDaysAcc  int
		soldCountAcc int
	)

	for _, v := range vehicles {
		opRange := opByVehRange[v.ID]
		opAll := opByVehAll[v.ID]

		purchaseInRange := pair == nil || pair.Contains(v.PurchaseDate)

		expenses := opRange
		if purchaseInRange {
			expenses += v.PurchasePrice
		}

		// Lifetime investment ignores the range entirely.
		investedGlobal := v.PurchasePrice + opAll
		investedRange := expenses

		soldInRange := v.SoldDate != nil && (pair == nil || pair.Contains(*v.SoldDate))

		var income float64
		if soldInRange && v.SoldPrice != nil {
			income = *v.SoldPrice
		}
		profit := income - expenses

		report.PerVehicle = append(report.PerVehicle, domain.VehicleMetrics{
			ID:            v.ID,
			Name:          v.Name,
			Plate:         v.Plate,
			OpExpenses:    opRange,
			Expenses:      expenses,
			Invested:      investedGlobal,
			InvestedRange: investedRange,
			Income:        income,
			Profit:        profit,
		})

		report.TotalOpExpenses += opRange
		report.TotalExpenses += expenses
		report.TotalInversionGlobal += investedGlobal
		report.TotalInversionRange += investedRange
		report.TotalIngresos += income

		if soldInRange {
			soldDaysAcc += holdingDays(v.PurchaseDate, *v.SoldDate)
			soldCountAcc++
		}
	}

	report.TotalProfit = report.TotalIngresos - report.TotalExpenses
	if soldCountAcc > 0 {
		report.AvgDaysToSell = int(math.Round(float64(soldDaysAcc) / float64(soldCountAcc)))
	}

	return report
}

// sumByVehicle folds expense amounts into a per-vehicle total.
func sumByVehicle(expenses []domain.Expense) map[uuid.UUID]float64 {
	acc := make(map[uuid.UUID]float64, len(expenses))
	for _, e := range expenses {
		acc[e.VehicleID] += e.Amount
	}
	return acc
}

// holdingDays is the whole number of days between purchase and sale,
// rounded to nearest and clamped at zero for out-of-order data.
func holdingDays(purchase, sold time.Time) int {
	days := sold.Sub(purchase).Hours() / 24
	return max(0, int(math.Round(days)))
}
