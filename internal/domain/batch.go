package domain

import "time"

// Batch is one goods receipt of a medicine stored at a single location.
// Invariant: 0 <= CurrentQuantity <= InitialQuantity; the quantity only moves
// down, through sales and disposals.
type Batch struct {
	BatchID           string    `db:"batch_id"` // UUID, PRIMARY KEY
	MedicineID        string    `db:"medicine_id"`
	StorageLocationID string    `db:"storage_location_id"`
	BatchNumber       string    `db:"batch_number"`
	InitialQuantity   int       `db:"initial_quantity"`
	CurrentQuantity   int       `db:"current_quantity"`
	ExpirationDate    time.Time `db:"expiration_date"`
	ArrivalDate       time.Time `db:"arrival_date"`
}

// BatchStock is a batch row locked for deduction, joined with the pharmacy
// that owns its storage location (needed for the tenant-isolation check).
type BatchStock struct {
	Batch
	PharmacyID string
}
