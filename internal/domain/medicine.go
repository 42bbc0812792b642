package domain

import "time"

// Medicine is the global nomenclature entry. The temperature bounds drive the
// cold-chain alerting: a reading strictly outside [min, max] is a violation.
type Medicine struct {
	MedicineID        string    `db:"medicine_id"` // UUID, PRIMARY KEY
	Name              string    `db:"name"`
	Manufacturer      string    `db:"manufacturer"`
	Description       string    `db:"description"`
	MinTemperature    float64   `db:"min_temperature"`
	MaxTemperature    float64   `db:"max_temperature"`
	IsPrescription    bool      `db:"is_prescription"`
	RequiresSmartLock bool      `db:"requires_smart_lock"`
	CreatedAt         time.Time `db:"created_at"`
}

// StoredMedicine is the slice of a medicine the threshold evaluator needs:
// a medicine present at a storage location together with its safe range.
type StoredMedicine struct {
	MedicineID     string
	Name           string
	MinTemperature float64
	MaxTemperature float64
}
