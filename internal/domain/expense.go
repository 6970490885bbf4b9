package domain

import (
	"time"

	"github.com/google/uuid"
)

// Expense is a single cost booked against a vehicle: a repair, detailing,
// paperwork, and so on. Amount is a signed value; costs are positive.
type Expense struct {
	ID        uuid.UUID `json:"id"`
	VehicleID uuid.UUID `json:"vehicleId"`
	Date      time.Time `json:"date"` // normalized to midnight in the reference timezone
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
