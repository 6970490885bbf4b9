// Package service contains the business logic for the Autolote API.
// Services validate inputs, enforce business rules, and orchestrate repo
// calls. No SQL lives here — services depend on repo interfaces, not
// implementations.
package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mfarias/autolote/internal/dates"
	"github.com/mfarias/autolote/internal/domain"
	"github.com/mfarias/autolote/internal/imagestore"
	"github.com/mfarias/autolote/internal/repo"
)

// ImageUpload is an optional image attached to a vehicle create request.
// Filename is used only for its extension.
type ImageUpload struct {
	Filename string
	Reader   io.Reader
}

// CreateVehicleInput carries the fields of a vehicle create request.
// PurchaseYMD is a "YYYY-MM-DD" calendar date in the reference timezone.
type CreateVehicleInput struct {
	Name          string
	Plate         string
	PurchaseYMD   string
	PurchasePrice float64
	Image         *ImageUpload
}

// VehicleService implements business logic for Vehicle operations.
type VehicleService struct {
	vehicles repo.VehicleRepo
	images   imagestore.Store
	norm     *dates.Normalizer
}

// NewVehicleService constructs a VehicleService backed by the provided repo,
// image store, and date normalizer.
func NewVehicleService(vehicles repo.VehicleRepo, images imagestore.Store, norm *dates.Normalizer) *VehicleService {
	return &VehicleService{vehicles: vehicles, images: images, norm: norm}
}

// List returns the lot inventory, newest purchases first.
// By default sold vehicles are hidden; showAll includes them.
// Always returns a non-nil slice so callers can safely range over it.
func (s *VehicleService) List(ctx context.Context, showAll bool) ([]domain.Vehicle, error) {
	vehicles, err := s.vehicles.List(ctx, nil, showAll)
	if err != nil {
		return nil, fmt.Errorf("service.VehicleService.List: %w", err)
	}
	if vehicles == nil {
		return []domain.Vehicle{}, nil
	}
	return vehicles, nil
}

// GetByID returns a single vehicle by ID.
func (s *VehicleService) GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error) {
	v, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.GetByID: %w", err)
	}
	return v, nil
}

// Create validates and persists a new vehicle, storing its image first if
// one was uploaded. Returns domain.ErrValidation on bad input,
// domain.ErrInvalidDate on a malformed purchase date, and domain.ErrConflict
// when the plate is already registered.
func (s *VehicleService) Create(ctx context.Context, in CreateVehicleInput) (domain.Vehicle, error) {
	if err := validateVehicleInput(in); err != nil {
		return domain.Vehicle{}, err
	}

	purchaseDate, err := s.norm.FromYMD(in.PurchaseYMD)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Create: %w", err)
	}

	var imageURL *string
	if in.Image != nil {
		url, err := s.images.Save(ctx, in.Plate, in.Image.Filename, in.Image.Reader)
		if err != nil {
			return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Create: image: %w", err)
		}
		imageURL = &url
	}

	result, err := s.vehicles.Create(ctx, domain.Vehicle{
		Name:          strings.TrimSpace(in.Name),
		Plate:         strings.TrimSpace(in.Plate),
		PurchaseDate:  purchaseDate,
		PurchasePrice: in.PurchasePrice,
		ImageURL:      imageURL,
	})
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Create: %w", err)
	}
	return result, nil
}

// Sell records the sale of a vehicle. soldYMD is a "YYYY-MM-DD" date in the
// reference timezone; when empty the current day is used. Selling an
// already-sold vehicle returns domain.ErrValidation; nothing else ever
// mutates a vehicle after creation.
func (s *VehicleService) Sell(ctx context.Context, id uuid.UUID, soldPrice float64, soldYMD string) (domain.Vehicle, error) {
	if soldPrice < 0 {
		return domain.Vehicle{}, fmt.Errorf("%w: soldPrice must not be negative", domain.ErrValidation)
	}

	soldDate, err := s.sellDate(soldYMD)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Sell: %w", err)
	}

	current, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Sell: %w", err)
	}
	if current.Sold() {
		return domain.Vehicle{}, fmt.Errorf("%w: vehicle is already sold", domain.ErrValidation)
	}

	result, err := s.vehicles.MarkSold(ctx, id, soldPrice, soldDate)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Sell: %w", err)
	}
	return result, nil
}

// sellDate resolves the sold date: an explicit calendar day when given,
// otherwise today in the reference zone.
func (s *VehicleService) sellDate(soldYMD string) (time.Time, error) {
	if soldYMD == "" {
		return s.norm.StartOfDay(time.Now()), nil
	}
	return s.norm.FromYMD(soldYMD)
}

// validateVehicleInput enforces the create-time business rules.
func validateVehicleInput(in CreateVehicleInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if strings.TrimSpace(in.Plate) == "" {
		return fmt.Errorf("%w: plate is required", domain.ErrValidation)
	}
	if in.PurchaseYMD == "" {
		return fmt.Errorf("%w: purchaseDate is required", domain.ErrValidation)
	}
	if in.PurchasePrice < 0 {
		return fmt.Errorf("%w: purchasePrice must not be negative", domain.ErrValidation)
	}
	return nil
}
