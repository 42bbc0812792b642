package httpapi

import (
	"net/http"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/service"

	"go.uber.org/zap"
)

// PharmacyHandler serves pharmacy and storage-location administration.
type PharmacyHandler struct {
	pharmacies service.PharmacyService
	logger     *zap.Logger
}

func NewPharmacyHandler(pharmacies service.PharmacyService, logger *zap.Logger) *PharmacyHandler {
	return &PharmacyHandler{pharmacies: pharmacies, logger: logger}
}

// CreatePharmacy handles POST /admin/api/v1/pharmacies.
func (h *PharmacyHandler) CreatePharmacy(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	var input service.PharmacyInput
	if err := readBodyJSON(r, 1<<20, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	pharmacy, err := h.pharmacies.CreatePharmacy(r.Context(), actor, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(pharmacy))
}

// ListPharmacies handles GET /admin/api/v1/pharmacies.
func (h *PharmacyHandler) ListPharmacies(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	pharmacies, err := h.pharmacies.ListPharmacies(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(pharmacies))
}

// DeletePharmacy handles DELETE /admin/api/v1/pharmacies/{id}.
func (h *PharmacyHandler) DeletePharmacy(w http.ResponseWriter, r *http.Request, pharmacyID string) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	if err := h.pharmacies.DeletePharmacy(r.Context(), actor, pharmacyID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"pharmacy_id": pharmacyID}))
}

// CreateLocation handles POST /admin/api/v1/locations.
func (h *PharmacyHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	var input service.LocationInput
	if err := readBodyJSON(r, 1<<20, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	location, err := h.pharmacies.CreateLocation(r.Context(), actor, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(location))
}

// ListLocations handles GET /admin/api/v1/locations.
func (h *PharmacyHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	locations, err := h.pharmacies.ListLocations(r.Context(), actor, r.URL.Query().Get("pharmacy_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(locations))
}

// DeleteLocation handles DELETE /admin/api/v1/locations/{id}.
func (h *PharmacyHandler) DeleteLocation(w http.ResponseWriter, r *http.Request, locationID string) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	if err := h.pharmacies.DeleteLocation(r.Context(), actor, locationID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"location_id": locationID}))
}
