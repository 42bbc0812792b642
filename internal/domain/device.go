package domain

import "time"

// Device types.
const (
	DeviceTypeSensor    = "sensor"
	DeviceTypeSmartLock = "smart_lock"
)

// IoTDevice is a telemetry sensor or smart lock. A device monitors at most one
// storage location at a time and may be unassigned.
type IoTDevice struct {
	DeviceID          string     `db:"device_id"` // UUID, PRIMARY KEY
	StorageLocationID *string    `db:"storage_location_id"` // UNIQUE, nullable
	SerialNumber      string     `db:"serial_number"`       // UNIQUE, NOT NULL
	DeviceType        string     `db:"device_type"`         // sensor, smart_lock
	Status            string     `db:"status"`
	LastSeen          *time.Time `db:"last_seen"`
}

// SensorReading is an immutable, append-only telemetry sample. Humidity is
// recorded but does not participate in violation logic.
type SensorReading struct {
	ReadingID    string    `db:"reading_id"` // UUID, PRIMARY KEY
	DeviceID     string    `db:"device_id"`
	Temperature  float64   `db:"temperature"`
	Humidity     float64   `db:"humidity"`
	BatteryLevel int       `db:"battery_level"`
	RecordedAt   time.Time `db:"recorded_at"`
}
