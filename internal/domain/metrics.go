package domain

import "github.com/google/uuid"

// VehicleMetrics is the per-vehicle row of a metrics report.
//
// Invested is the lifetime figure (purchase price + all expenses ever),
// regardless of the requested range. InvestedRange and Expenses are scoped
// to the range: operating expenses in range plus the purchase price when the
// purchase date falls inside the range.
type VehicleMetrics struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Plate         string    `json:"plate"`
	OpExpenses    float64   `json:"opExpenses"`
	Expenses      float64   `json:"expenses"`
	Invested      float64   `json:"invested"`
	InvestedRange float64   `json:"investedRange"`
	Income        float64   `json:"income"`
	Profit        float64   `json:"profit"`
}

// MetricsFilters echoes back the query parameters a report was computed for,
// so the frontend can label the result without tracking its own request state.
// EndDate is the effective end: it defaults to StartDate when only one bound
// was supplied.
type MetricsFilters struct {
	StartDate string  `json:"startDate,omitempty"`
	EndDate   string  `json:"endDate,omitempty"`
	VehicleID *string `json:"vehicleId"`
}

// MetricsReport is the portfolio-wide financial summary.
// Totals are the sums of the per-vehicle rows; TotalProfit is
// TotalIngresos - TotalExpenses exactly.
//
// The *Ingresos/*Inversion field names are kept in Spanish because they are
// part of the wire contract with the existing frontend.
type MetricsReport struct {
	TotalOpExpenses      float64          `json:"totalOpExpenses"`
	TotalExpenses        float64          `json:"totalExpenses"`
	TotalIngresos        float64          `json:"totalIngresos"`
	TotalInversionGlobal float64          `json:"totalInversionGlobal"`
	TotalInversionRange  float64          `json:"totalInversionRange"`
	TotalProfit          float64          `json:"totalProfit"`
	AvgDaysToSell        int              `json:"avgDaysToSell"`
	PerVehicle           []VehicleMetrics `json:"perVehicle"`
	Filters              MetricsFilters   `json:"filters"`
}
