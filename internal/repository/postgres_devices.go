package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/domain"

	"go.uber.org/zap"
)

// DevicesRepository persists IoT sensors and smart locks.
type DevicesRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewDevicesRepository(db *sql.DB, logger *zap.Logger) *DevicesRepository {
	return &DevicesRepository{db: db, logger: logger}
}

const deviceColumns = `
	d.device_id,
	d.storage_location_id,
	d.serial_number,
	d.device_type,
	d.status,
	d.last_seen`

// Create registers a new device. A serial number collision maps to
// ErrDuplicateSerial; assigning a location that already has a device maps to
// ErrValidation (one device per location).
func (r *DevicesRepository) Create(ctx context.Context, device *domain.IoTDevice) error {
	if device.DeviceID == "" {
		return fmt.Errorf("device_id is required")
	}

	query := `
		INSERT INTO iot_devices (device_id, storage_location_id, serial_number, device_type, status)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		device.DeviceID,
		device.StorageLocationID,
		device.SerialNumber,
		device.DeviceType,
		device.Status,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("serial number %s: %w", device.SerialNumber, domain.ErrDuplicateSerial)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("storage location %v: %w", device.StorageLocationID, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to create device: %w", err)
	}
	return nil
}

// GetBySerial resolves a device by its serial number (telemetry is keyed by
// serial: devices do not know their database ids).
func (r *DevicesRepository) GetBySerial(ctx context.Context, serialNumber string) (*domain.IoTDevice, error) {
	query := `
		SELECT` + deviceColumns + `
		FROM iot_devices d
		WHERE d.serial_number = $1
	`
	device, err := r.scanDevice(r.db.QueryRowContext(ctx, query, serialNumber))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("device %s: %w", serialNumber, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get device %s: %w", serialNumber, err)
	}
	return device, nil
}

// Get resolves a device by id, joined with its owning pharmacy when assigned.
func (r *DevicesRepository) Get(ctx context.Context, deviceID string) (*domain.IoTDevice, *string, error) {
	query := `
		SELECT` + deviceColumns + `,
			sl.pharmacy_id
		FROM iot_devices d
		LEFT JOIN storage_locations sl ON d.storage_location_id = sl.location_id
		WHERE d.device_id = $1
	`

	var d domain.IoTDevice
	var locationID, pharmacyID sql.NullString
	var lastSeen sql.NullTime
	err := r.db.QueryRowContext(ctx, query, deviceID).Scan(
		&d.DeviceID,
		&locationID,
		&d.SerialNumber,
		&d.DeviceType,
		&d.Status,
		&lastSeen,
		&pharmacyID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, fmt.Errorf("device %s: %w", deviceID, domain.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("failed to get device %s: %w", deviceID, err)
	}
	if locationID.Valid {
		d.StorageLocationID = &locationID.String
	}
	if lastSeen.Valid {
		d.LastSeen = &lastSeen.Time
	}
	var pharmacy *string
	if pharmacyID.Valid {
		pharmacy = &pharmacyID.String
	}
	return &d, pharmacy, nil
}

// List returns devices visible in the tenant scope. Unassigned devices are
// admin-only (they belong to no pharmacy yet).
func (r *DevicesRepository) List(ctx context.Context, scope domain.Scope) ([]domain.IoTDevice, error) {
	if scope.Empty() {
		return []domain.IoTDevice{}, nil
	}

	var query string
	args := []any{}
	if scope.All {
		query = `
			SELECT` + deviceColumns + `
			FROM iot_devices d
			ORDER BY d.serial_number
		`
	} else {
		query = `
			SELECT` + deviceColumns + `
			FROM iot_devices d
			JOIN storage_locations sl ON d.storage_location_id = sl.location_id
			WHERE sl.pharmacy_id = $1
			ORDER BY d.serial_number
		`
		args = append(args, scope.PharmacyID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	devices := []domain.IoTDevice{}
	for rows.Next() {
		var d domain.IoTDevice
		var locationID sql.NullString
		var lastSeen sql.NullTime
		if err := rows.Scan(
			&d.DeviceID,
			&locationID,
			&d.SerialNumber,
			&d.DeviceType,
			&d.Status,
			&lastSeen,
		); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		if locationID.Valid {
			d.StorageLocationID = &locationID.String
		}
		if lastSeen.Valid {
			d.LastSeen = &lastSeen.Time
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate devices: %w", err)
	}
	return devices, nil
}

// Delete removes a device and its readings/alerts history stays behind the
// foreign keys (ON DELETE CASCADE on readings and alerts).
func (r *DevicesRepository) Delete(ctx context.Context, deviceID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM iot_devices WHERE device_id = $1`, deviceID)
	if err != nil {
		return fmt.Errorf("failed to delete device %s: %w", deviceID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("device %s: %w", deviceID, domain.ErrNotFound)
	}
	return nil
}

// TouchLastSeen records that the device reported in.
func (r *DevicesRepository) TouchLastSeen(ctx context.Context, q Querier, deviceID string, at time.Time) error {
	_, err := q.ExecContext(ctx, `UPDATE iot_devices SET last_seen = $2 WHERE device_id = $1`, deviceID, at)
	if err != nil {
		return fmt.Errorf("failed to update last_seen for device %s: %w", deviceID, err)
	}
	return nil
}

func (r *DevicesRepository) scanDevice(row *sql.Row) (*domain.IoTDevice, error) {
	var d domain.IoTDevice
	var locationID sql.NullString
	var lastSeen sql.NullTime
	err := row.Scan(
		&d.DeviceID,
		&locationID,
		&d.SerialNumber,
		&d.DeviceType,
		&d.Status,
		&lastSeen,
	)
	if err != nil {
		return nil, err
	}
	if locationID.Valid {
		d.StorageLocationID = &locationID.String
	}
	if lastSeen.Valid {
		d.LastSeen = &lastSeen.Time
	}
	return &d, nil
}
