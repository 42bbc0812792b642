package domain

import (
	"encoding/json"
	"time"
)

// Audited actions. Alert opening is deliberately not audited: only resolutions
// and manual actions leave an audit trail.
const (
	AuditSaleCreated       = "SALE_CREATED"
	AuditBatchDisposal     = "BATCH_DISPOSAL"
	AuditAlertResolved     = "ALERT_RESOLVED"
	AuditAlertAutoResolved = "ALERT_AUTO_RESOLVED"
)

// AuditLog is an append-only journal entry written inside the same transaction
// as the mutation it describes. UserID is nil for system-originated actions.
type AuditLog struct {
	LogID     int64           `db:"log_id"` // BIGSERIAL, PRIMARY KEY
	UserID    *string         `db:"user_id"`
	Action    string          `db:"action"`
	Details   json.RawMessage `db:"details"` // JSONB
	CreatedAt time.Time       `db:"created_at"`
}
