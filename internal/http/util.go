package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/domain"
)

// Identity headers set by the external auth layer.
const (
	headerUserID     = "X-User-Id"
	headerUserRole   = "X-User-Role"
	headerPharmacyID = "X-Pharmacy-Id"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// actorFromRequest reads the caller identity asserted by the auth layer.
// Requests without an identity are rejected before reaching any service.
func actorFromRequest(r *http.Request) (domain.Actor, bool) {
	userID := r.Header.Get(headerUserID)
	role := r.Header.Get(headerUserRole)
	if userID == "" || role == "" {
		return domain.Actor{}, false
	}
	actor := domain.Actor{UserID: userID, Role: role}
	if pharmacyID := r.Header.Get(headerPharmacyID); pharmacyID != "" {
		actor.PharmacyID = &pharmacyID
	}
	return actor, true
}

// writeError maps domain error kinds to HTTP statuses. Unknown errors become
// opaque 500s so internals do not leak.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, Fail(err.Error()))
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrCrossPharmacyAccess):
		writeJSON(w, http.StatusForbidden, Fail(err.Error()))
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrDuplicateSerial),
		errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
	default:
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, Fail("missing identity headers"))
}
