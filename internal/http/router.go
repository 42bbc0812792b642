package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router wraps the standard library http.ServeMux; path parameters are
// parsed by hand in the route closures.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func methodNotAllowed(w http.ResponseWriter) {
	w.WriteHeader(http.StatusMethodNotAllowed)
}

// RegisterIoTRoutes wires devices, telemetry and alerts.
func (r *Router) RegisterIoTRoutes(devices *DeviceHandler, telemetry *TelemetryHandler, alerts *AlertHandler) {
	r.Handle("/iot/api/v1/devices", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodPost:
			devices.Register(w, req)
		case http.MethodGet:
			devices.List(w, req)
		default:
			methodNotAllowed(w)
		}
	})

	r.Handle("/iot/api/v1/devices/", func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/iot/api/v1/devices/")

		if id, ok := strings.CutSuffix(rest, "/readings"); ok && id != "" && !strings.Contains(id, "/") {
			switch req.Method {
			case http.MethodPost:
				// Device-originated: {id} is the serial number.
				telemetry.PostReading(w, req, id)
			case http.MethodGet:
				telemetry.GetReadings(w, req, id)
			default:
				methodNotAllowed(w)
			}
			return
		}

		if rest == "" || strings.Contains(rest, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if req.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}
		devices.Delete(w, req, rest)
	})

	r.Handle("/iot/api/v1/alerts", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		alerts.ListActive(w, req)
	})

	r.Handle("/iot/api/v1/alerts/", func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/iot/api/v1/alerts/")
		id, ok := strings.CutSuffix(rest, "/resolve")
		if !ok || id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if req.Method != http.MethodPut {
			methodNotAllowed(w)
			return
		}
		alerts.Resolve(w, req, id)
	})
}

// RegisterSalesRoutes wires the point-of-sale endpoints.
func (r *Router) RegisterSalesRoutes(sales *SalesHandler) {
	r.Handle("/sales/api/v1/sales", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodPost:
			sales.Create(w, req)
		case http.MethodGet:
			sales.List(w, req)
		default:
			methodNotAllowed(w)
		}
	})

	r.Handle("/sales/api/v1/sales/", func(w http.ResponseWriter, req *http.Request) {
		id := strings.TrimPrefix(req.URL.Path, "/sales/api/v1/sales/")
		if id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		sales.Get(w, req, id)
	})
}

// RegisterInventoryRoutes wires the catalog and stock ledger endpoints.
func (r *Router) RegisterInventoryRoutes(inventory *InventoryHandler) {
	r.Handle("/inventory/api/v1/medicines", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodPost:
			inventory.CreateMedicine(w, req)
		case http.MethodGet:
			inventory.ListMedicines(w, req)
		default:
			methodNotAllowed(w)
		}
	})

	r.Handle("/inventory/api/v1/medicines/", func(w http.ResponseWriter, req *http.Request) {
		id := strings.TrimPrefix(req.URL.Path, "/inventory/api/v1/medicines/")
		if id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if req.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}
		inventory.DeleteMedicine(w, req, id)
	})

	r.Handle("/inventory/api/v1/batches", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodPost:
			inventory.CreateBatch(w, req)
		case http.MethodGet:
			inventory.ListBatches(w, req)
		default:
			methodNotAllowed(w)
		}
	})

	r.Handle("/inventory/api/v1/batches/expired", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		inventory.ListExpiring(w, req)
	})

	r.Handle("/inventory/api/v1/batches/import", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		inventory.ImportBatches(w, req)
	})

	r.Handle("/inventory/api/v1/batches/export", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		inventory.ExportStock(w, req)
	})

	r.Handle("/inventory/api/v1/batches/", func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/inventory/api/v1/batches/")

		if id, ok := strings.CutSuffix(rest, "/dispose"); ok && id != "" && !strings.Contains(id, "/") {
			if req.Method != http.MethodPost {
				methodNotAllowed(w)
				return
			}
			inventory.Dispose(w, req, id)
			return
		}

		if rest == "" || strings.Contains(rest, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if req.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}
		inventory.DeleteBatch(w, req, rest)
	})
}

// RegisterAdminRoutes wires pharmacy administration and the audit journal.
func (r *Router) RegisterAdminRoutes(pharmacies *PharmacyHandler, audit *AuditHandler) {
	r.Handle("/admin/api/v1/pharmacies", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodPost:
			pharmacies.CreatePharmacy(w, req)
		case http.MethodGet:
			pharmacies.ListPharmacies(w, req)
		default:
			methodNotAllowed(w)
		}
	})

	r.Handle("/admin/api/v1/pharmacies/", func(w http.ResponseWriter, req *http.Request) {
		id := strings.TrimPrefix(req.URL.Path, "/admin/api/v1/pharmacies/")
		if id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if req.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}
		pharmacies.DeletePharmacy(w, req, id)
	})

	r.Handle("/admin/api/v1/locations", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodPost:
			pharmacies.CreateLocation(w, req)
		case http.MethodGet:
			pharmacies.ListLocations(w, req)
		default:
			methodNotAllowed(w)
		}
	})

	r.Handle("/admin/api/v1/locations/", func(w http.ResponseWriter, req *http.Request) {
		id := strings.TrimPrefix(req.URL.Path, "/admin/api/v1/locations/")
		if id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if req.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}
		pharmacies.DeleteLocation(w, req, id)
	})

	r.Handle("/admin/api/v1/audit-logs", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		audit.List(w, req)
	})
}

// RegisterHealthRoutes wires the liveness probe.
func (r *Router) RegisterHealthRoutes() {
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, Ok(map[string]string{"status": "ok"}))
	})
}
