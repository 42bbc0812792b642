package domain

import "time"

// Alert severities.
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Alert is a cold-chain incident opened by the telemetry pipeline.
// Invariant: at most one unresolved alert exists per device at any time
// (enforced by a partial unique index on alerts(device_id) WHERE NOT is_resolved).
type Alert struct {
	AlertID    string     `db:"alert_id"` // UUID, PRIMARY KEY
	DeviceID   string     `db:"device_id"`
	Severity   string     `db:"severity"` // warning, critical
	Message    string     `db:"message"`
	IsResolved bool       `db:"is_resolved"`
	CreatedAt  time.Time  `db:"created_at"`
	ResolvedAt *time.Time `db:"resolved_at"`
}

// AlertDetail is an alert joined with device serial and owning pharmacy,
// as needed for tenant scoping and audit details.
type AlertDetail struct {
	Alert
	SerialNumber string
	PharmacyID   *string // nil when the device is unassigned
}
