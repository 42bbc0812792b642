package httpapi

import (
	"net/http"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/service"

	"go.uber.org/zap"
)

// AuditHandler exposes the audit journal.
type AuditHandler struct {
	audit  service.AuditService
	logger *zap.Logger
}

func NewAuditHandler(audit service.AuditService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{audit: audit, logger: logger}
}

// List handles GET /admin/api/v1/audit-logs.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	q := r.URL.Query()
	logs, err := h.audit.List(r.Context(), actor,
		parseInt(q.Get("limit"), 100), parseInt(q.Get("offset"), 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(logs))
}
