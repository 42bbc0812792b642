package domain

import "time"

// Pharmacy is the tenant: every non-admin actor is scoped to exactly one.
type Pharmacy struct {
	PharmacyID        string     `db:"pharmacy_id"` // UUID, PRIMARY KEY
	Name              string     `db:"name"`
	Address           string     `db:"address"`
	LicenseNumber     string     `db:"license_number"` // UNIQUE, NOT NULL
	LicenseExpiryDate *time.Time `db:"license_expiry_date"`
	Phone             string     `db:"phone"`
	CreatedAt         time.Time  `db:"created_at"`
}

// StorageLocation is a physical unit (shelf, refrigerator) inside a pharmacy,
// optionally monitored by one IoT device.
type StorageLocation struct {
	LocationID     string `db:"location_id"` // UUID, PRIMARY KEY
	PharmacyID     string `db:"pharmacy_id"` // NOT NULL
	Name           string `db:"name"`
	Description    string `db:"description"`
	IsRefrigerated bool   `db:"is_refrigerated"`
}
