// Package handler implements the HTTP handlers for the Autolote API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, vehicle.go, etc.) but all share the same Server struct so
// they can access its dependencies.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mfarias/autolote/internal/domain"
	"github.com/mfarias/autolote/internal/service"
)

// VehicleServicer defines the business operations the vehicle handlers
// depend on. Defining the interface here (in the consumer package) follows
// the Go convention: "accept interfaces, return concrete types". It lets
// handler tests inject a mock without touching the database or service layer.
type VehicleServicer interface {
	List(ctx context.Context, showAll bool) ([]domain.Vehicle, error)
	Create(ctx context.Context, in service.CreateVehicleInput) (domain.Vehicle, error)
	Sell(ctx context.Context, id uuid.UUID, soldPrice float64, soldYMD string) (domain.Vehicle, error)
}

// ExpenseServicer defines the business operations the expense handlers depend on.
type ExpenseServicer interface {
	Create(ctx context.Context, in service.CreateExpenseInput) (domain.Expense, error)
	ListPaged(ctx context.Context, vehicleID *uuid.UUID, p domain.PaginationParams) ([]domain.Expense, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Summary(ctx context.Context) (map[uuid.UUID]float64, error)
}

// MetricsServicer defines the reporting operation the metrics handler depends on.
type MetricsServicer interface {
	Report(ctx context.Context, startYMD, endYMD string, vehicleID *uuid.UUID) (domain.MetricsReport, error)
}

// AuthServicer defines the login operation the auth handler depends on.
type AuthServicer interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// Server implements all API endpoints. Wire it into a chi router via
// Register. Methods are in domain-specific files but all operate on this struct.
type Server struct {
	vehicles VehicleServicer
	expenses ExpenseServicer
	metrics  MetricsServicer
	auth     AuthServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(vehicles VehicleServicer, expenses ExpenseServicer, metrics MetricsServicer, auth AuthServicer) *Server {
	return &Server{vehicles: vehicles, expenses: expenses, metrics: metrics, auth: auth}
}

// Register mounts all routes on r. requireAuth protects everything under
// /api except the login endpoint.
func (s *Server) Register(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/login", s.Login)

		api.Group(func(priv chi.Router) {
			priv.Use(requireAuth)

			priv.Get("/vehicles", s.ListVehicles)
			priv.Post("/vehicles", s.CreateVehicle)
			priv.Patch("/vehicles/{id}/sell", s.SellVehicle)

			priv.Get("/expenses", s.ListExpenses)
			priv.Post("/expenses", s.CreateExpense)
			priv.Get("/expenses/summary", s.ExpenseSummary)
			priv.Delete("/expenses/{id}", s.DeleteExpense)

			priv.Get("/metrics", s.GetMetrics)
		})
	})
}
