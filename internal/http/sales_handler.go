package httpapi

import (
	"net/http"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/domain"
	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/service"

	"go.uber.org/zap"
)

// SalesHandler serves the point-of-sale endpoints.
type SalesHandler struct {
	sales  service.SalesService
	logger *zap.Logger
}

func NewSalesHandler(sales service.SalesService, logger *zap.Logger) *SalesHandler {
	return &SalesHandler{sales: sales, logger: logger}
}

type createSaleRequest struct {
	Items []domain.SaleLine `json:"items"`
}

// Create handles POST /sales/api/v1/sales.
func (h *SalesHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req createSaleRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	sale, err := h.sales.CreateSale(r.Context(), actor, req.Items)
	if err != nil {
		h.logger.Warn("sale rejected",
			zap.String("user_id", actor.UserID),
			zap.Int("items", len(req.Items)),
			zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(sale))
}

// Get handles GET /sales/api/v1/sales/{id}.
func (h *SalesHandler) Get(w http.ResponseWriter, r *http.Request, saleID string) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	sale, err := h.sales.GetSale(r.Context(), actor, saleID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(sale))
}

// List handles GET /sales/api/v1/sales.
func (h *SalesHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	q := r.URL.Query()
	sales, err := h.sales.ListSales(r.Context(), actor, q.Get("pharmacy_id"),
		parseInt(q.Get("limit"), 100), parseInt(q.Get("offset"), 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(sales))
}
