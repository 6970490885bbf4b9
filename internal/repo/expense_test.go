package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfarias/autolote/internal/dates"
	"github.com/mfarias/autolote/internal/domain"
	"github.com/mfarias/autolote/internal/repo"
)

// newExpenseRepos returns an ExpenseRepo and a VehicleRepo sharing the same
// rolled-back transaction, since expenses need a parent vehicle to satisfy
// the foreign key.
func newExpenseRepos(t *testing.T) (repo.ExpenseRepo, repo.VehicleRepo) {
	t.Helper()
	tx := newTestTx(t)
	return repo.NewExpenseRepo(tx), repo.NewVehicleRepo(tx)
}

func createVehicle(t *testing.T, vehicles repo.VehicleRepo) domain.Vehicle {
	t.Helper()
	v, err := vehicles.Create(context.Background(), vehicleInput())
	require.NoError(t, err)
	return v
}

func expenseInput(vehicleID uuid.UUID, date time.Time) domain.Expense {
	return domain.Expense{
		VehicleID: vehicleID,
		Date:      date,
		Name:      "cambio de aceite",
		Amount:    120000,
	}
}

func TestExpenseRepo_Create(t *testing.T) {
	expenses, vehicles := newExpenseRepos(t)
	ctx := context.Background()
	v := createVehicle(t, vehicles)

	date := time.Date(2025, 9, 20, 3, 0, 0, 0, time.UTC)
	got, err := expenses.Create(ctx, expenseInput(v.ID, date))

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, v.ID, got.VehicleID)
	assert.True(t, got.Date.Equal(date), "Date mismatch")
	assert.Equal(t, 120000.0, got.Amount)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestExpenseRepo_List_FilterAndOrder(t *testing.T) {
	expenses, vehicles := newExpenseRepos(t)
	ctx := context.Background()
	v1 := createVehicle(t, vehicles)
	v2 := createVehicle(t, vehicles)

	older := expenseInput(v1.ID, time.Date(2025, 9, 1, 3, 0, 0, 0, time.UTC))
	newer := expenseInput(v1.ID, time.Date(2025, 9, 20, 3, 0, 0, 0, time.UTC))
	other := expenseInput(v2.ID, time.Date(2025, 9, 10, 3, 0, 0, 0, time.UTC))

	_, err := expenses.Create(ctx, older)
	require.NoError(t, err)
	_, err = expenses.Create(ctx, newer)
	require.NoError(t, err)
	_, err = expenses.Create(ctx, other)
	require.NoError(t, err)

	got, err := expenses.List(ctx, &v1.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// date DESC: newer first
	assert.True(t, got[0].Date.After(got[1].Date))
	for _, e := range got {
		assert.Equal(t, v1.ID, e.VehicleID)
	}

	all, err := expenses.List(ctx, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(all), 3)
}

func TestExpenseRepo_ListPaged(t *testing.T) {
	expenses, vehicles := newExpenseRepos(t)
	ctx := context.Background()
	v := createVehicle(t, vehicles)

	for day := 1; day <= 5; day++ {
		e := expenseInput(v.ID, time.Date(2025, 9, day, 3, 0, 0, 0, time.UTC))
		_, err := expenses.Create(ctx, e)
		require.NoError(t, err)
	}

	params := domain.PaginationParams{Page: 2, Limit: 2}
	page, total, err := expenses.ListPaged(ctx, &v.ID, params)

	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	// date DESC: page 2 of limit 2 holds days 3 and 2
	assert.Equal(t, 3, page[0].Date.Day())
	assert.Equal(t, 2, page[1].Date.Day())
}

func TestExpenseRepo_ListInEitherRange(t *testing.T) {
	expenses, vehicles := newExpenseRepos(t)
	ctx := context.Background()
	v := createVehicle(t, vehicles)

	loc, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)
	norm := dates.NewNormalizer(loc)

	// One expense stored as a correct zone-midnight instant, one stored the
	// legacy way (UTC midnight of the same calendar day), one outside the range.
	zoneDate, err := norm.FromYMD("2025-09-20")
	require.NoError(t, err)
	legacyDate := time.Date(2025, 9, 20, 0, 0, 0, 0, time.UTC)
	outside := time.Date(2025, 11, 1, 3, 0, 0, 0, time.UTC)

	for _, d := range []time.Time{zoneDate, legacyDate, outside} {
		_, err := expenses.Create(ctx, expenseInput(v.ID, d))
		require.NoError(t, err)
	}

	pair, err := norm.RangePair("2025-09-20", "2025-09-20")
	require.NoError(t, err)

	got, err := expenses.ListInEitherRange(ctx, &v.ID, pair)

	require.NoError(t, err)
	require.Len(t, got, 2, "both interpretations of the day should match")
	for _, e := range got {
		assert.True(t, e.Date.Equal(zoneDate) || e.Date.Equal(legacyDate))
	}
}

func TestExpenseRepo_Delete(t *testing.T) {
	expenses, vehicles := newExpenseRepos(t)
	ctx := context.Background()
	v := createVehicle(t, vehicles)

	created, err := expenses.Create(ctx, expenseInput(v.ID, time.Now()))
	require.NoError(t, err)

	require.NoError(t, expenses.Delete(ctx, created.ID))

	got, err := expenses.List(ctx, &v.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExpenseRepo_Delete_NotFound(t *testing.T) {
	expenses, _ := newExpenseRepos(t)

	err := expenses.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExpenseRepo_SumByVehicle(t *testing.T) {
	expenses, vehicles := newExpenseRepos(t)
	ctx := context.Background()
	v1 := createVehicle(t, vehicles)
	v2 := createVehicle(t, vehicles)
	noExpenses := createVehicle(t, vehicles)

	amounts := map[uuid.UUID][]float64{
		v1.ID: {120000, 50000},
		v2.ID: {30000},
	}
	for id, as := range amounts {
		for _, a := range as {
			e := expenseInput(id, time.Now())
			e.Amount = a
			_, err := expenses.Create(ctx, e)
			require.NoError(t, err)
		}
	}

	sums, err := expenses.SumByVehicle(ctx)

	require.NoError(t, err)
	assert.Equal(t, 170000.0, sums[v1.ID])
	assert.Equal(t, 30000.0, sums[v2.ID])
	_, ok := sums[noExpenses.ID]
	assert.False(t, ok, "vehicles without expenses should be absent")
}

func TestExpenseRepo_UpdateDate(t *testing.T) {
	expenses, vehicles := newExpenseRepos(t)
	ctx := context.Background()
	v := createVehicle(t, vehicles)

	created, err := expenses.Create(ctx, expenseInput(v.ID, time.Date(2025, 9, 20, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	fixed := time.Date(2025, 9, 20, 3, 0, 0, 0, time.UTC)
	require.NoError(t, expenses.UpdateDate(ctx, created.ID, fixed))

	got, err := expenses.List(ctx, &v.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Date.Equal(fixed))
}

func TestExpenseRepo_UpdateDate_NotFound(t *testing.T) {
	expenses, _ := newExpenseRepos(t)

	err := expenses.UpdateDate(context.Background(), uuid.New(), time.Now())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
