package httpapi

import (
	"net/http"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/service"

	"go.uber.org/zap"
)

// AlertHandler serves the alert views and the manual resolve action.
type AlertHandler struct {
	alerts service.AlertService
	logger *zap.Logger
}

func NewAlertHandler(alerts service.AlertService, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{alerts: alerts, logger: logger}
}

// ListActive handles GET /iot/api/v1/alerts.
func (h *AlertHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	alerts, err := h.alerts.ListActive(r.Context(), actor, r.URL.Query().Get("pharmacy_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(alerts))
}

// Resolve handles PUT /iot/api/v1/alerts/{id}/resolve.
func (h *AlertHandler) Resolve(w http.ResponseWriter, r *http.Request, alertID string) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	detail, err := h.alerts.Resolve(r.Context(), actor, alertID)
	if err != nil {
		h.logger.Warn("alert resolve failed",
			zap.String("alert_id", alertID),
			zap.String("user_id", actor.UserID),
			zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(detail))
}
