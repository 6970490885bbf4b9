// Package repo contains all database access logic for the Autolote API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mfarias/autolote/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// uniqueViolation is the Postgres SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

// VehicleRepo defines the persistence operations for Vehicles.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type VehicleRepo interface {
	// Create inserts a new vehicle and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	// Returns domain.ErrConflict if a vehicle with the same plate exists.
	Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)

	// GetByID retrieves a single vehicle by its UUID primary key.
	// Returns domain.ErrNotFound if no vehicle with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error)

	// List returns vehicles ordered by purchase_date descending, then
	// created_at descending. When includeSold is false, sold vehicles are
	// filtered out (the default lot view shows current inventory only).
	// When id is non-nil the result is restricted to that single vehicle.
	List(ctx context.Context, id *uuid.UUID, includeSold bool) ([]domain.Vehicle, error)

	// MarkSold records the sale of a vehicle and returns the updated record.
	// Returns domain.ErrNotFound if no vehicle with that ID exists.
	MarkSold(ctx context.Context, id uuid.UUID, soldPrice float64, soldDate time.Time) (domain.Vehicle, error)

	// UpdateDates overwrites purchase_date and sold_date. Used only by the
	// date-repair batch. Returns domain.ErrNotFound if the vehicle is absent.
	UpdateDates(ctx context.Context, id uuid.UUID, purchaseDate time.Time, soldDate *time.Time) error
}

// pgVehicleRepo is the Postgres implementation of VehicleRepo.
type pgVehicleRepo struct {
	db db
}

// NewVehicleRepo constructs a VehicleRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewVehicleRepo(db db) VehicleRepo {
	return &pgVehicleRepo{db: db}
}

// vehicleCols is the column list shared by every vehicle query.
const vehicleCols = `id, name, plate, purchase_date, purchase_price, sold_date, sold_price, image_url, created_at, updated_at`

// Create inserts a new vehicle row and returns the full persisted record.
func (r *pgVehicleRepo) Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	const q = `
		INSERT INTO vehicles (name, plate, purchase_date, purchase_price, sold_date, sold_price, image_url)
		VALUES (@name, @plate, @purchase_date, @purchase_price, @sold_date, @sold_price, @image_url)
		RETURNING ` + vehicleCols

	args := pgx.NamedArgs{
		"name":           v.Name,
		"plate":          v.Plate,
		"purchase_date":  v.PurchaseDate,
		"purchase_price": v.PurchasePrice,
		"sold_date":      v.SoldDate, // nil becomes NULL
		"sold_price":     v.SoldPrice,
		"image_url":      v.ImageURL,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanVehicle(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Vehicle{}, fmt.Errorf("repo.VehicleRepo.Create: plate %q: %w", v.Plate, domain.ErrConflict)
		}
		return domain.Vehicle{}, fmt.Errorf("repo.VehicleRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a vehicle by primary key.
func (r *pgVehicleRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error) {
	const q = `
		SELECT ` + vehicleCols + `
		FROM vehicles
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanVehicle(row)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("repo.VehicleRepo.GetByID: %w", err)
	}
	return result, nil
}

// List returns vehicles for the lot view, newest purchases first.
func (r *pgVehicleRepo) List(ctx context.Context, id *uuid.UUID, includeSold bool) ([]domain.Vehicle, error) {
	const q = `
		SELECT ` + vehicleCols + `
		FROM vehicles
		WHERE (@id::uuid IS NULL OR id = @id)
		  AND (@include_sold OR sold_date IS NULL)
		ORDER BY purchase_date DESC, created_at DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"id": id, "include_sold": includeSold})
	if err != nil {
		return nil, fmt.Errorf("repo.VehicleRepo.List: %w", err)
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.VehicleRepo.List: scan: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.VehicleRepo.List: rows: %w", err)
	}

	return vehicles, nil
}

// MarkSold records sold_price and sold_date and returns the updated record.
func (r *pgVehicleRepo) MarkSold(ctx context.Context, id uuid.UUID, soldPrice float64, soldDate time.Time) (domain.Vehicle, error) {
	const q = `
		UPDATE vehicles
		SET sold_price = @sold_price,
		    sold_date  = @sold_date,
		    updated_at = now()
		WHERE id = @id
		RETURNING ` + vehicleCols

	args := pgx.NamedArgs{
		"id":         id,
		"sold_price": soldPrice,
		"sold_date":  soldDate,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanVehicle(row)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("repo.VehicleRepo.MarkSold: %w", err)
	}
	return result, nil
}

// UpdateDates overwrites the date fields of a vehicle (date-repair batch only).
func (r *pgVehicleRepo) UpdateDates(ctx context.Context, id uuid.UUID, purchaseDate time.Time, soldDate *time.Time) error {
	const q = `
		UPDATE vehicles
		SET purchase_date = @purchase_date,
		    sold_date     = @sold_date,
		    updated_at    = now()
		WHERE id = @id`

	args := pgx.NamedArgs{
		"id":            id,
		"purchase_date": purchaseDate,
		"sold_date":     soldDate,
	}

	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("repo.VehicleRepo.UpdateDates: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.VehicleRepo.UpdateDates: %w", domain.ErrNotFound)
	}
	return nil
}

// scanVehicle maps a single database row into a domain.Vehicle.
// It handles the UUID and the nullable sold_date/sold_price/image_url columns.
func scanVehicle(s scanner) (domain.Vehicle, error) {
	var (
		v         domain.Vehicle
		id        pgtype.UUID
		soldDate  pgtype.Timestamptz
		soldPrice pgtype.Float8
		imageURL  pgtype.Text
	)

	err := s.Scan(&id, &v.Name, &v.Plate, &v.PurchaseDate, &v.PurchasePrice,
		&soldDate, &soldPrice, &imageURL, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Vehicle{}, domain.ErrNotFound
		}
		return domain.Vehicle{}, err
	}

	v.ID = uuid.UUID(id.Bytes)
	if soldDate.Valid {
		sd := soldDate.Time
		v.SoldDate = &sd
	}
	if soldPrice.Valid {
		sp := soldPrice.Float64
		v.SoldPrice = &sp
	}
	if imageURL.Valid {
		u := imageURL.String
		v.ImageURL = &u
	}

	return v, nil
}
