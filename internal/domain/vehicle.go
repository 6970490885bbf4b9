// Package domain contains the core data types for the Autolote API.
// This package has zero external dependencies beyond uuid and is imported
// by every other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle represents a single vehicle on the lot, from purchase to sale.
// A vehicle is the top-level aggregate; expenses reference a vehicle but
// are not owned by it (no cascading delete).
//
// JSON field names are camelCase because that is the wire contract the
// frontend was built against.
type Vehicle struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Plate         string     `json:"plate"` // registration code, unique per lot
	PurchaseDate  time.Time  `json:"purchaseDate"`
	PurchasePrice float64    `json:"purchasePrice"`
	SoldDate      *time.Time `json:"soldDate"`  // nil until the vehicle is sold
	SoldPrice     *float64   `json:"soldPrice"` // nil until the vehicle is sold
	ImageURL      *string    `json:"imageUrl,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Sold reports whether the vehicle has been sold.
// SoldDate and SoldPrice are set together by the sell transition, so
// checking either one is sufficient.
func (v Vehicle) Sold() bool {
	return v.SoldDate != nil
}
