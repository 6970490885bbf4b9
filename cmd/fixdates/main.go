// Command fixdates is the one-shot repair batch for legacy date rows.
// Rows written before dates were normalized hold UTC-midnight instants; this
// tool rewrites each one to midnight of the same calendar day in the
// reference timezone. Running it again is a no-op.
//
// Usage:
//
//	DATABASE_URL=postgres://... [TIMEZONE=America/Santiago] fixdates
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mfarias/autolote/internal/dates"
	"github.com/mfarias/autolote/internal/repo"
	"github.com/mfarias/autolote/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	tz := os.Getenv("TIMEZONE")
	if tz == "" {
		tz = "America/Santiago"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		slog.Error("invalid TIMEZONE", "timezone", tz, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		slog.Error("creating database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	repair := service.NewDateRepairService(
		repo.NewVehicleRepo(pool),
		repo.NewExpenseRepo(pool),
		dates.NewNormalizer(loc),
		logger,
	)

	stats, err := repair.Run(ctx)
	if err != nil {
		slog.Error("date repair failed", "error", err)
		os.Exit(1)
	}

	slog.Info("date repair complete",
		"expenses_seen", stats.ExpensesSeen,
		"expenses_fixed", stats.ExpensesFixed,
		"vehicles_seen", stats.VehiclesSeen,
		"vehicles_fixed", stats.VehiclesFixed,
	)
}
