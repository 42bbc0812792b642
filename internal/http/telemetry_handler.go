package httpapi

import (
	"net/http"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/service"

	"go.uber.org/zap"
)

// TelemetryHandler exposes the device-facing ingest endpoint and the reading
// history. Ingest is unauthenticated: devices identify themselves by serial
// number only.
type TelemetryHandler struct {
	telemetry service.TelemetryService
	logger    *zap.Logger
}

func NewTelemetryHandler(telemetry service.TelemetryService, logger *zap.Logger) *TelemetryHandler {
	return &TelemetryHandler{telemetry: telemetry, logger: logger}
}

type ingestResponse struct {
	ReadingID     string `json:"reading_id"`
	AlertOpened   string `json:"alert_opened,omitempty"`
	AlertResolved string `json:"alert_resolved,omitempty"`
}

// PostReading handles POST /iot/api/v1/devices/{serial}/readings.
func (h *TelemetryHandler) PostReading(w http.ResponseWriter, r *http.Request, serial string) {
	var input service.ReadingInput
	if err := readBodyJSON(r, 1<<20, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	result, err := h.telemetry.Ingest(r.Context(), serial, input)
	if err != nil {
		h.logger.Warn("telemetry ingest failed", zap.String("serial_number", serial), zap.Error(err))
		writeError(w, err)
		return
	}

	resp := ingestResponse{ReadingID: result.Reading.ReadingID}
	if result.AlertOpened != nil {
		resp.AlertOpened = result.AlertOpened.AlertID
	}
	if result.AlertResolved != nil {
		resp.AlertResolved = result.AlertResolved.AlertID
	}
	writeJSON(w, http.StatusCreated, Ok(resp))
}

// GetReadings handles GET /iot/api/v1/devices/{id}/readings.
func (h *TelemetryHandler) GetReadings(w http.ResponseWriter, r *http.Request, deviceID string) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	limit := parseInt(r.URL.Query().Get("limit"), 100)
	readings, err := h.telemetry.ListReadings(r.Context(), actor, deviceID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(readings))
}
