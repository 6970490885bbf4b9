package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mfarias/autolote/internal/service"
)

// ListVehicles handles GET /api/vehicles.
// By default sold vehicles are excluded; ?showAll=true includes them.
func (s *Server) ListVehicles(w http.ResponseWriter, r *http.Request) {
	showAll := r.URL.Query().Get("showAll") == "true"

	vehicles, err := s.vehicles.List(r.Context(), showAll)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

// CreateVehicle handles POST /api/vehicles.
// The request is multipart/form-data so the vehicle photo can travel with the
// fields: name, plate, purchaseDate ("YYYY-MM-DD"), purchasePrice, and an
// optional "image" file part.
func (s *Server) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		badRequest(w, "request body must be multipart/form-data")
		return
	}

	in := service.CreateVehicleInput{
		Name:        r.FormValue("name"),
		Plate:       r.FormValue("plate"),
		PurchaseYMD: r.FormValue("purchaseDate"),
	}
	if raw := r.FormValue("purchasePrice"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			badRequest(w, "purchasePrice must be a number")
			return
		}
		in.PurchasePrice = price
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		in.Image = &service.ImageUpload{Filename: header.Filename, Reader: file}
	case errors.Is(err, http.ErrMissingFile):
		// image is optional
	default:
		badRequest(w, "invalid image upload")
		return
	}

	created, err := s.vehicles.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// sellRequest is the body of PATCH /api/vehicles/{id}/sell.
// SoldDate is optional and defaults to the current day in the reference zone.
type sellRequest struct {
	SoldPrice float64 `json:"soldPrice"`
	SoldDate  string  `json:"soldDate"`
}

// SellVehicle handles PATCH /api/vehicles/{id}/sell.
func (s *Server) SellVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "id must be a valid UUID")
		return
	}

	var req sellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "request body must be valid JSON")
		return
	}

	sold, err := s.vehicles.Sell(r.Context(), id, req.SoldPrice, req.SoldDate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sold)
}

// maxMemory bounds how much of a multipart body is held in memory before
// spilling to temp files. 8 MiB leaves headroom for phone photos without
// buffering the whole upload.
const maxMemory = 8 << 20
