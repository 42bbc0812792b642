package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/domain"

	"go.uber.org/zap"
)

// AlertsRepository persists cold-chain alerts. The at-most-one-open-alert-per-
// device invariant is enforced twice: GetOpenForUpdate serializes concurrent
// lifecycle decisions for a device, and a partial unique index on
// alerts(device_id) WHERE NOT is_resolved backstops it at the store.
type AlertsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewAlertsRepository(db *sql.DB, logger *zap.Logger) *AlertsRepository {
	return &AlertsRepository{db: db, logger: logger}
}

const alertColumns = `
	a.alert_id,
	a.device_id,
	a.severity,
	a.message,
	a.is_resolved,
	a.created_at,
	a.resolved_at`

// GetOpenForUpdate returns the device's unresolved alert locked for the
// surrounding transaction, or nil when the device has no open alert.
func (r *AlertsRepository) GetOpenForUpdate(ctx context.Context, q Querier, deviceID string) (*domain.Alert, error) {
	query := `
		SELECT` + alertColumns + `
		FROM alerts a
		WHERE a.device_id = $1
		  AND NOT a.is_resolved
		FOR UPDATE
	`

	alert, err := scanAlert(q.QueryRowContext(ctx, query, deviceID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock open alert for device %s: %w", deviceID, err)
	}
	return alert, nil
}

// CreateOpen inserts a new unresolved alert. When another open alert already
// exists for the device the insert is a no-op and CreateOpen reports created=false.
func (r *AlertsRepository) CreateOpen(ctx context.Context, q Querier, alert *domain.Alert) (bool, error) {
	if alert.AlertID == "" {
		return false, fmt.Errorf("alert_id is required")
	}

	query := `
		INSERT INTO alerts (alert_id, device_id, severity, message, is_resolved, created_at)
		VALUES ($1, $2, $3, $4, FALSE, $5)
		ON CONFLICT (device_id) WHERE NOT is_resolved DO NOTHING
	`

	result, err := q.ExecContext(ctx, query,
		alert.AlertID,
		alert.DeviceID,
		alert.Severity,
		alert.Message,
		alert.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create alert: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n == 1, nil
}

// Resolve marks an alert resolved and stamps the resolution time. Resolving an
// already-resolved alert affects no rows and returns ErrValidation.
func (r *AlertsRepository) Resolve(ctx context.Context, q Querier, alertID string, resolvedAt time.Time) error {
	query := `
		UPDATE alerts
		SET is_resolved = TRUE,
		    resolved_at = $2
		WHERE alert_id = $1
		  AND NOT is_resolved
	`

	result, err := q.ExecContext(ctx, query, alertID, resolvedAt)
	if err != nil {
		return fmt.Errorf("failed to resolve alert %s: %w", alertID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("alert %s is already resolved: %w", alertID, domain.ErrValidation)
	}
	return nil
}

// GetDetail reads one alert together with its device serial and owning
// pharmacy, as needed for tenant checks and audit details.
func (r *AlertsRepository) GetDetail(ctx context.Context, alertID string) (*domain.AlertDetail, error) {
	query := `
		SELECT` + alertColumns + `,
			d.serial_number,
			sl.pharmacy_id
		FROM alerts a
		JOIN iot_devices d ON a.device_id = d.device_id
		LEFT JOIN storage_locations sl ON d.storage_location_id = sl.location_id
		WHERE a.alert_id = $1
	`

	var detail domain.AlertDetail
	var pharmacyID sql.NullString
	var resolvedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, alertID).Scan(
		&detail.AlertID,
		&detail.DeviceID,
		&detail.Severity,
		&detail.Message,
		&detail.IsResolved,
		&detail.CreatedAt,
		&resolvedAt,
		&detail.SerialNumber,
		&pharmacyID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("alert %s: %w", alertID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get alert %s: %w", alertID, err)
	}
	if resolvedAt.Valid {
		detail.ResolvedAt = &resolvedAt.Time
	}
	if pharmacyID.Valid {
		detail.PharmacyID = &pharmacyID.String
	}
	return &detail, nil
}

// ListActive returns unresolved alerts visible in the tenant scope, newest first.
func (r *AlertsRepository) ListActive(ctx context.Context, scope domain.Scope) ([]domain.Alert, error) {
	if scope.Empty() {
		return []domain.Alert{}, nil
	}

	query := `
		SELECT` + alertColumns + `
		FROM alerts a
		JOIN iot_devices d ON a.device_id = d.device_id
		JOIN storage_locations sl ON d.storage_location_id = sl.location_id
		WHERE NOT a.is_resolved
	`
	args := []any{}
	if !scope.All {
		query += ` AND sl.pharmacy_id = $1`
		args = append(args, scope.PharmacyID)
	}
	query += ` ORDER BY a.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query active alerts: %w", err)
	}
	defer rows.Close()

	alerts := []domain.Alert{}
	for rows.Next() {
		alert, err := scanAlertRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, *alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alerts: %w", err)
	}
	return alerts, nil
}

func scanAlert(row *sql.Row) (*domain.Alert, error) {
	var a domain.Alert
	var resolvedAt sql.NullTime
	err := row.Scan(
		&a.AlertID,
		&a.DeviceID,
		&a.Severity,
		&a.Message,
		&a.IsResolved,
		&a.CreatedAt,
		&resolvedAt,
	)
	if err != nil {
		return nil, err
	}
	if resolvedAt.Valid {
		a.ResolvedAt = &resolvedAt.Time
	}
	return &a, nil
}

func scanAlertRows(rows *sql.Rows) (*domain.Alert, error) {
	var a domain.Alert
	var resolvedAt sql.NullTime
	err := rows.Scan(
		&a.AlertID,
		&a.DeviceID,
		&a.Severity,
		&a.Message,
		&a.IsResolved,
		&a.CreatedAt,
		&resolvedAt,
	)
	if err != nil {
		return nil, err
	}
	if resolvedAt.Valid {
		a.ResolvedAt = &resolvedAt.Time
	}
	return &a, nil
}
