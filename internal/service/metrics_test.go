package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfarias/autolote/internal/dates"
	"github.com/mfarias/autolote/internal/domain"
	"github.com/mfarias/autolote/internal/service"
)

// hiluxFixture is the reference scenario: purchased 2025-09-15 for 9.8M,
// sold 2025-10-10 for 11.5M, with two expenses (120k on 09-18, 50k on 10-02).
func hiluxFixture(t *testing.T, norm *dates.Normalizer) (domain.Vehicle, []domain.Expense) {
	t.Helper()

	purchase, err := norm.FromYMD("2025-09-15")
	require.NoError(t, err)
	sold, err := norm.FromYMD("2025-10-10")
	require.NoError(t, err)
	soldPrice := 11_500_000.0

	v := domain.Vehicle{
		ID:            uuid.New(),
		Name:          "Toyota Hilux",
		Plate:         "KJ-12-34",
		PurchaseDate:  purchase,
		PurchasePrice: 9_800_000,
		SoldDate:      &sold,
		SoldPrice:     &soldPrice,
	}

	d1, err := norm.FromYMD("2025-09-18")
	require.NoError(t, err)
	d2, err := norm.FromYMD("2025-10-02")
	require.NoError(t, err)

	expenses := []domain.Expense{
		{ID: uuid.New(), VehicleID: v.ID, Date: d1, Name: "Mantención menor", Amount: 120_000},
		{ID: uuid.New(), VehicleID: v.ID, Date: d2, Name: "Detailing", Amount: 50_000},
	}
	return v, expenses
}

func rangePair(t *testing.T, norm *dates.Normalizer, start, end string) *dates.Pair {
	t.Helper()
	pair, err := norm.RangePair(start, end)
	require.NoError(t, err)
	return &pair
}

// ---- ComputeReport (pure) ------------------------------------------------

func TestComputeReport_SoldVehicleInRange(t *testing.T) {
	norm := testNormalizer(t)
	v, expenses := hiluxFixture(t, norm)
	pair := rangePair(t, norm, "2025-09-01", "2025-10-31")

	got := service.ComputeReport([]domain.Vehicle{v}, expenses, expenses, pair, domain.MetricsFilters{})

	require.Len(t, got.PerVehicle, 1)
	row := got.PerVehicle[0]
	assert.Equal(t, 170_000.0, row.OpExpenses)
	assert.Equal(t, 9_970_000.0, row.Expenses, "purchase falls in range")
	assert.Equal(t, 9_970_000.0, row.Invested)
	assert.Equal(t, 9_970_000.0, row.InvestedRange)
	assert.Equal(t, 11_500_000.0, row.Income)
	assert.Equal(t, 1_530_000.0, row.Profit)

	assert.Equal(t, 170_000.0, got.TotalOpExpenses)
	assert.Equal(t, 9_970_000.0, got.TotalExpenses)
	assert.Equal(t, 11_500_000.0, got.TotalIngresos)
	assert.Equal(t, 9_970_000.0, got.TotalInversionGlobal)
	assert.Equal(t, 9_970_000.0, got.TotalInversionRange)
	assert.Equal(t, 1_530_000.0, got.TotalProfit)
	assert.Equal(t, 25, got.AvgDaysToSell, "2025-09-15 to 2025-10-10 is 25 days")
}

func TestComputeReport_RangeWithNoOverlap(t *testing.T) {
	norm := testNormalizer(t)
	v, expenses := hiluxFixture(t, norm)
	pair := rangePair(t, norm, "2025-11-01", "2025-11-30")

	// Nothing falls in November, so the in-range expense set is empty.
	got := service.ComputeReport([]domain.Vehicle{v}, nil, expenses, pair, domain.MetricsFilters{})

	require.Len(t, got.PerVehicle, 1)
	row := got.PerVehicle[0]
	assert.Equal(t, 0.0, row.OpExpenses)
	assert.Equal(t, 0.0, row.Expenses)
	assert.Equal(t, 0.0, row.Income)
	assert.Equal(t, 0.0, row.Profit)
	assert.Equal(t, 9_970_000.0, row.Invested, "lifetime investment ignores the range")

	assert.Equal(t, 0, got.AvgDaysToSell, "no sale in range")
}

func TestComputeReport_NoRangeEqualsFullHistory(t *testing.T) {
	norm := testNormalizer(t)
	v, expenses := hiluxFixture(t, norm)

	withRange := service.ComputeReport([]domain.Vehicle{v}, expenses, expenses,
		rangePair(t, norm, "2025-01-01", "2025-12-31"), domain.MetricsFilters{})
	noRange := service.ComputeReport([]domain.Vehicle{v}, expenses, expenses, nil, domain.MetricsFilters{})

	assert.Equal(t, withRange.TotalExpenses, noRange.TotalExpenses)
	assert.Equal(t, withRange.TotalIngresos, noRange.TotalIngresos)
	assert.Equal(t, withRange.TotalProfit, noRange.TotalProfit)
	assert.Equal(t, withRange.AvgDaysToSell, noRange.AvgDaysToSell)
}

func TestComputeReport_VehicleWithNoActivity(t *testing.T) {
	norm := testNormalizer(t)
	purchase, err := norm.FromYMD("2025-10-01")
	require.NoError(t, err)

	v := domain.Vehicle{
		ID:            uuid.New(),
		Name:          "Mazda 3",
		Plate:         "S4-19-40",
		PurchaseDate:  purchase,
		PurchasePrice: 4_500_000,
	}

	got := service.ComputeReport([]domain.Vehicle{v}, nil, nil, nil, domain.MetricsFilters{})

	require.Len(t, got.PerVehicle, 1)
	row := got.PerVehicle[0]
	assert.Equal(t, 0.0, row.OpExpenses)
	assert.Equal(t, 0.0, row.Income)
	assert.Equal(t, 4_500_000.0, row.Invested, "invested equals purchase price with no expenses")
	assert.Equal(t, 0, got.AvgDaysToSell)
}

func TestComputeReport_ProfitIdentity(t *testing.T) {
	norm := testNormalizer(t)
	v1, exp1 := hiluxFixture(t, norm)

	purchase, err := norm.FromYMD("2025-10-01")
	require.NoError(t, err)
	v2 := domain.Vehicle{ID: uuid.New(), Name: "Mazda 3", Plate: "S4-19-40", PurchaseDate: purchase, PurchasePrice: 4_500_000}

	got := service.ComputeReport([]domain.Vehicle{v1, v2}, exp1, exp1, nil, domain.MetricsFilters{})

	for _, row := range got.PerVehicle {
		assert.Equal(t, row.Income-row.Expenses, row.Profit, "profit identity per vehicle %s", row.Plate)
	}
	assert.Equal(t, got.TotalIngresos-got.TotalExpenses, got.TotalProfit)
}

func TestComputeReport_LegacyUTCInstantStillCounts(t *testing.T) {
	// A sold date stored as literal UTC midnight (pre-repair data) must still
	// match a range built for the same calendar day.
	norm := testNormalizer(t)
	v, expenses := hiluxFixture(t, norm)
	legacySold := time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC)
	v.SoldDate = &legacySold

	pair := rangePair(t, norm, "2025-10-10", "2025-10-10")
	got := service.ComputeReport([]domain.Vehicle{v}, nil, expenses, pair, domain.MetricsFilters{})

	require.Len(t, got.PerVehicle, 1)
	assert.Equal(t, 11_500_000.0, got.PerVehicle[0].Income)
}

func TestComputeReport_Deterministic(t *testing.T) {
	norm := testNormalizer(t)
	v, expenses := hiluxFixture(t, norm)
	pair := rangePair(t, norm, "2025-09-01", "2025-10-31")

	a := service.ComputeReport([]domain.Vehicle{v}, expenses, expenses, pair, domain.MetricsFilters{})
	b := service.ComputeReport([]domain.Vehicle{v}, expenses, expenses, pair, domain.MetricsFilters{})

	assert.Equal(t, a, b)
}

// ---- MetricsService.Report ------------------------------------------------

func TestMetricsService_Report_InvalidRange(t *testing.T) {
	svc := service.NewMetricsService(&mockVehicleRepo{}, &mockExpenseRepo{}, testNormalizer(t))

	_, err := svc.Report(context.Background(), "2025-13-01", "", nil)

	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestMetricsService_Report_NoRangeLoadsAllExpensesOnce(t *testing.T) {
	norm := testNormalizer(t)
	v, expenses := hiluxFixture(t, norm)
	listCalls := 0

	svc := service.NewMetricsService(
		&mockVehicleRepo{
			list: func(_ context.Context, id *uuid.UUID, includeSold bool) ([]domain.Vehicle, error) {
				assert.Nil(t, id)
				assert.True(t, includeSold, "metrics always cover sold vehicles")
				return []domain.Vehicle{v}, nil
			},
		},
		&mockExpenseRepo{
			list: func(_ context.Context, _ *uuid.UUID) ([]domain.Expense, error) {
				listCalls++
				return expenses, nil
			},
		},
		norm,
	)

	got, err := svc.Report(context.Background(), "", "", nil)

	require.NoError(t, err)
	assert.Equal(t, 1, listCalls, "without a range the full set doubles as the in-range set")
	assert.Equal(t, 9_970_000.0, got.TotalExpenses)
	assert.Equal(t, 25, got.AvgDaysToSell)
}

func TestMetricsService_Report_WithRangeAndFilterEcho(t *testing.T) {
	norm := testNormalizer(t)
	v, expenses := hiluxFixture(t, norm)
	vehicleID := v.ID

	svc := service.NewMetricsService(
		&mockVehicleRepo{
			list: func(_ context.Context, id *uuid.UUID, _ bool) ([]domain.Vehicle, error) {
				require.NotNil(t, id)
				assert.Equal(t, vehicleID, *id)
				return []domain.Vehicle{v}, nil
			},
		},
		&mockExpenseRepo{
			list: func(_ context.Context, _ *uuid.UUID) ([]domain.Expense, error) {
				return expenses, nil
			},
			listInEitherRange: func(_ context.Context, _ *uuid.UUID, pair dates.Pair) ([]domain.Expense, error) {
				// The in-zone range must start at local midnight of the start day.
				want, err := norm.FromYMD("2025-09-01")
				require.NoError(t, err)
				assert.True(t, pair.Zone.Start.Equal(want))
				return expenses, nil
			},
		},
		norm,
	)

	got, err := svc.Report(context.Background(), "2025-09-01", "2025-10-31", &vehicleID)

	require.NoError(t, err)
	assert.Equal(t, "2025-09-01", got.Filters.StartDate)
	assert.Equal(t, "2025-10-31", got.Filters.EndDate)
	require.NotNil(t, got.Filters.VehicleID)
	assert.Equal(t, vehicleID.String(), *got.Filters.VehicleID)
	assert.Equal(t, 1_530_000.0, got.TotalProfit)
}

func TestMetricsService_Report_EndDateDefaultsToStart(t *testing.T) {
	norm := testNormalizer(t)

	svc := service.NewMetricsService(
		&mockVehicleRepo{
			list: func(_ context.Context, _ *uuid.UUID, _ bool) ([]domain.Vehicle, error) {
				return nil, nil
			},
		},
		&mockExpenseRepo{
			list: func(_ context.Context, _ *uuid.UUID) ([]domain.Expense, error) {
				return nil, nil
			},
			listInEitherRange: func(_ context.Context, _ *uuid.UUID, _ dates.Pair) ([]domain.Expense, error) {
				return nil, nil
			},
		},
		norm,
	)

	got, err := svc.Report(context.Background(), "2025-09-15", "", nil)

	require.NoError(t, err)
	assert.Equal(t, "2025-09-15", got.Filters.EndDate)
	assert.Nil(t, got.Filters.VehicleID)
}
