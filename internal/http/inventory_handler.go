package httpapi

import (
	"net/http"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/domain"
	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/service"

	"go.uber.org/zap"
)

// InventoryHandler serves the medicine catalog and the stock ledger.
type InventoryHandler struct {
	inventory service.InventoryService
	logger    *zap.Logger
}

func NewInventoryHandler(inventory service.InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{inventory: inventory, logger: logger}
}

// CreateMedicine handles POST /inventory/api/v1/medicines.
func (h *InventoryHandler) CreateMedicine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	var med domain.Medicine
	if err := readBodyJSON(r, 1<<20, &med); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	if err := h.inventory.CreateMedicine(r.Context(), actor, &med); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(med))
}

// ListMedicines handles GET /inventory/api/v1/medicines.
func (h *InventoryHandler) ListMedicines(w http.ResponseWriter, r *http.Request) {
	if _, ok := actorFromRequest(r); !ok {
		writeUnauthorized(w)
		return
	}

	medicines, err := h.inventory.ListMedicines(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(medicines))
}

// DeleteMedicine handles DELETE /inventory/api/v1/medicines/{id}.
func (h *InventoryHandler) DeleteMedicine(w http.ResponseWriter, r *http.Request, medicineID string) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	if err := h.inventory.DeleteMedicine(r.Context(), actor, medicineID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"medicine_id": medicineID}))
}

// CreateBatch handles POST /inventory/api/v1/batches.
func (h *InventoryHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	var input service.BatchInput
	if err := readBodyJSON(r, 1<<20, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	batch, err := h.inventory.CreateBatch(r.Context(), actor, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(batch))
}

// ListBatches handles GET /inventory/api/v1/batches.
func (h *InventoryHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	batches, err := h.inventory.ListBatches(r.Context(), actor, r.URL.Query().Get("pharmacy_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(batches))
}

// ListExpiring handles GET /inventory/api/v1/batches/expired.
func (h *InventoryHandler) ListExpiring(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	q := r.URL.Query()
	batches, err := h.inventory.ListExpiring(r.Context(), actor, q.Get("pharmacy_id"),
		parseInt(q.Get("days_to_expire"), 30))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(batches))
}

type disposeRequest struct {
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

type disposeResponse struct {
	BatchID           string `json:"batch_id"`
	QuantityRemoved   int    `json:"quantity_removed"`
	RemainingQuantity int    `json:"remaining_quantity"`
}

// Dispose handles POST /inventory/api/v1/batches/{id}/dispose.
func (h *InventoryHandler) Dispose(w http.ResponseWriter, r *http.Request, batchID string) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req disposeRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	remaining, err := h.inventory.Dispose(r.Context(), actor, batchID, req.Quantity, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(disposeResponse{
		BatchID:           batchID,
		QuantityRemoved:   req.Quantity,
		RemainingQuantity: remaining,
	}))
}

// DeleteBatch handles DELETE /inventory/api/v1/batches/{id}.
func (h *InventoryHandler) DeleteBatch(w http.ResponseWriter, r *http.Request, batchID string) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	if err := h.inventory.DeleteBatch(r.Context(), actor, batchID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"batch_id": batchID}))
}

// ImportBatches handles POST /inventory/api/v1/batches/import. The request
// body is the Excel workbook itself.
func (h *InventoryHandler) ImportBatches(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	report, err := h.inventory.ImportBatches(r.Context(), actor, http.MaxBytesReader(w, r.Body, 16<<20))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(report))
}

// ExportStock handles GET /inventory/api/v1/batches/export.
func (h *InventoryHandler) ExportStock(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	data, err := h.inventory.ExportStock(r.Context(), actor, r.URL.Query().Get("pharmacy_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="stock.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
