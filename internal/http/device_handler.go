package httpapi

import (
	"net/http"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/service"

	"go.uber.org/zap"
)

// DeviceHandler serves device registration and lifecycle.
type DeviceHandler struct {
	devices service.DeviceService
	logger  *zap.Logger
}

func NewDeviceHandler(devices service.DeviceService, logger *zap.Logger) *DeviceHandler {
	return &DeviceHandler{devices: devices, logger: logger}
}

// Register handles POST /iot/api/v1/devices.
func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	var input service.RegisterDeviceInput
	if err := readBodyJSON(r, 1<<20, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	device, err := h.devices.Register(r.Context(), actor, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(device))
}

// List handles GET /iot/api/v1/devices.
func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	devices, err := h.devices.List(r.Context(), actor, r.URL.Query().Get("pharmacy_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(devices))
}

// Delete handles DELETE /iot/api/v1/devices/{id}.
func (h *DeviceHandler) Delete(w http.ResponseWriter, r *http.Request, deviceID string) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	if err := h.devices.Delete(r.Context(), actor, deviceID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"device_id": deviceID}))
}
