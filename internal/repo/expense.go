package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mfarias/autolote/internal/dates"
	"github.com/mfarias/autolote/internal/domain"
)

// ExpenseRepo defines the persistence operations for Expenses.
type ExpenseRepo interface {
	// Create inserts a new expense and returns the persisted record.
	Create(ctx context.Context, e domain.Expense) (domain.Expense, error)

	// List returns all expenses ordered by date descending, optionally
	// restricted to a single vehicle.
	List(ctx context.Context, vehicleID *uuid.UUID) ([]domain.Expense, error)

	// ListPaged returns one page of expenses (date descending) and the total
	// count matching the filter.
	ListPaged(ctx context.Context, vehicleID *uuid.UUID, p domain.PaginationParams) ([]domain.Expense, int64, error)

	// ListInEitherRange returns expenses whose date falls in either of the two
	// interpretations of a calendar-day range (see package dates). Needed while
	// the collection holds a mix of legacy and corrected instants.
	ListInEitherRange(ctx context.Context, vehicleID *uuid.UUID, pair dates.Pair) ([]domain.Expense, error)

	// Delete removes an expense by ID. Returns domain.ErrNotFound if it does
	// not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// SumByVehicle returns the total expense amount grouped by vehicle.
	// Vehicles with no expenses are absent from the map.
	SumByVehicle(ctx context.Context) (map[uuid.UUID]float64, error)

	// UpdateDate overwrites the date of an expense. Used only by the
	// date-repair batch. Returns domain.ErrNotFound if the expense is absent.
	UpdateDate(ctx context.Context, id uuid.UUID, date time.Time) error
}

// pgExpenseRepo is the Postgres implementation of ExpenseRepo.
type pgExpenseRepo struct {
	db db
}

// NewExpenseRepo constructs an ExpenseRepo backed by the provided db connection.
func NewExpenseRepo(db db) ExpenseRepo {
	return &pgExpenseRepo{db: db}
}

const expenseCols = `id, vehicle_id, date, name, amount, created_at, updated_at`

// Create inserts a new expense row and returns the full persisted record.
func (r *pgExpenseRepo) Create(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	const q = `
		INSERT INTO expenses (vehicle_id, date, name, amount)
		VALUES (@vehicle_id, @date, @name, @amount)
		RETURNING ` + expenseCols

	args := pgx.NamedArgs{
		"vehicle_id": e.VehicleID,
		"date":       e.Date,
		"name":       e.Name,
		"amount":     e.Amount,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanExpense(row)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("repo.ExpenseRepo.Create: %w", err)
	}
	return result, nil
}

// List returns all expenses, newest first, optionally filtered by vehicle.
func (r *pgExpenseRepo) List(ctx context.Context, vehicleID *uuid.UUID) ([]domain.Expense, error) {
	const q = `
		SELECT ` + expenseCols + `
		FROM expenses
		WHERE (@vehicle_id::uuid IS NULL OR vehicle_id = @vehicle_id)
		ORDER BY date DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"vehicle_id": vehicleID})
	if err != nil {
		return nil, fmt.Errorf("repo.ExpenseRepo.List: %w", err)
	}
	defer rows.Close()

	return collectExpenses(rows, "repo.ExpenseRepo.List")
}

// ListPaged returns one page of expenses and the total count for the filter.
func (r *pgExpenseRepo) ListPaged(ctx context.Context, vehicleID *uuid.UUID, p domain.PaginationParams) ([]domain.Expense, int64, error) {
	const countQ = `
		SELECT count(*)
		FROM expenses
		WHERE (@vehicle_id::uuid IS NULL OR vehicle_id = @vehicle_id)`

	var total int64
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"vehicle_id": vehicleID}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ExpenseRepo.ListPaged: count: %w", err)
	}

	const q = `
		SELECT ` + expenseCols + `
		FROM expenses
		WHERE (@vehicle_id::uuid IS NULL OR vehicle_id = @vehicle_id)
		ORDER BY date DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"vehicle_id": vehicleID,
		"limit":      p.Limit,
		"offset":     p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ExpenseRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	expenses, err := collectExpenses(rows, "repo.ExpenseRepo.ListPaged")
	if err != nil {
		return nil, 0, err
	}
	return expenses, total, nil
}

// ListInEitherRange returns expenses dated inside either interpretation of
// the range. The OR over two BETWEEN clauses mirrors how the metrics read
// path tolerates mixed legacy/corrected instants.
func (r *pgExpenseRepo) ListInEitherRange(ctx context.Context, vehicleID *uuid.UUID, pair dates.Pair) ([]domain.Expense, error) {
	const q = `
		SELECT ` + expenseCols + `
		FROM expenses
		WHERE (@vehicle_id::uuid IS NULL OR vehicle_id = @vehicle_id)
		  AND (date BETWEEN @zone_start AND @zone_end
		       OR date BETWEEN @utc_start AND @utc_end)
		ORDER BY date DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"vehicle_id": vehicleID,
		"zone_start": pair.Zone.Start,
		"zone_end":   pair.Zone.End,
		"utc_start":  pair.UTC.Start,
		"utc_end":    pair.UTC.End,
	})
	if err != nil {
		return nil, fmt.Errorf("repo.ExpenseRepo.ListInEitherRange: %w", err)
	}
	defer rows.Close()

	return collectExpenses(rows, "repo.ExpenseRepo.ListInEitherRange")
}

// Delete removes an expense by primary key.
func (r *pgExpenseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM expenses WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ExpenseRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ExpenseRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// SumByVehicle aggregates expense totals per vehicle in a single query.
func (r *pgExpenseRepo) SumByVehicle(ctx context.Context) (map[uuid.UUID]float64, error) {
	const q = `
		SELECT vehicle_id, sum(amount)
		FROM expenses
		GROUP BY vehicle_id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.ExpenseRepo.SumByVehicle: %w", err)
	}
	defer rows.Close()

	totals := make(map[uuid.UUID]float64)
	for rows.Next() {
		var (
			id    pgtype.UUID
			total float64
		)
		if err := rows.Scan(&id, &total); err != nil {
			return nil, fmt.Errorf("repo.ExpenseRepo.SumByVehicle: scan: %w", err)
		}
		totals[uuid.UUID(id.Bytes)] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ExpenseRepo.SumByVehicle: rows: %w", err)
	}

	return totals, nil
}

// UpdateDate overwrites the date of an expense (date-repair batch only).
func (r *pgExpenseRepo) UpdateDate(ctx context.Context, id uuid.UUID, date time.Time) error {
	const q = `
		UPDATE expenses
		SET date       = @date,
		    updated_at = now()
		WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "date": date})
	if err != nil {
		return fmt.Errorf("repo.ExpenseRepo.UpdateDate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ExpenseRepo.UpdateDate: %w", domain.ErrNotFound)
	}
	return nil
}

// collectExpenses drains rows into a slice, wrapping scan errors with op.
func collectExpenses(rows pgx.Rows, op string) ([]domain.Expense, error) {
	var expenses []domain.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return expenses, nil
}

// scanExpense maps a single database row into a domain.Expense.
func scanExpense(s scanner) (domain.Expense, error) {
	var (
		e         domain.Expense
		id        pgtype.UUID
		vehicleID pgtype.UUID
	)

	err := s.Scan(&id, &vehicleID, &e.Date, &e.Name, &e.Amount, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Expense{}, domain.ErrNotFound
		}
		return domain.Expense{}, err
	}

	e.ID = uuid.UUID(id.Bytes)
	e.VehicleID = uuid.UUID(vehicleID.Bytes)

	return e, nil
}
