package handler

import (
	"net/http"

	"github.com/google/uuid"
)

// GetMetrics handles GET /api/metrics.
// Optional query params: startDate and endDate ("YYYY-MM-DD", endDate
// defaults to startDate), and vehicleId to scope the report to one vehicle.
// Bad dates map to 400 via the service's ErrInvalidDate.
func (s *Server) GetMetrics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var vehicleID *uuid.UUID
	if raw := q.Get("vehicleId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(w, "vehicleId must be a valid UUID")
			return
		}
		vehicleID = &id
	}

	report, err := s.metrics.Report(r.Context(), q.Get("startDate"), q.Get("endDate"), vehicleID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
