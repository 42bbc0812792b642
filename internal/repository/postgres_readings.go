package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/domain"

	"go.uber.org/zap"
)

// ReadingsRepository stores the append-only telemetry history.
type ReadingsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewReadingsRepository(db *sql.DB, logger *zap.Logger) *ReadingsRepository {
	return &ReadingsRepository{db: db, logger: logger}
}

// Insert appends one sensor reading.
func (r *ReadingsRepository) Insert(ctx context.Context, q Querier, reading *domain.SensorReading) error {
	if reading.ReadingID == "" {
		return fmt.Errorf("reading_id is required")
	}

	query := `
		INSERT INTO sensor_readings (reading_id, device_id, temperature, humidity, battery_level, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := q.ExecContext(ctx, query,
		reading.ReadingID,
		reading.DeviceID,
		reading.Temperature,
		reading.Humidity,
		reading.BatteryLevel,
		reading.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sensor reading: %w", err)
	}
	return nil
}

// ListByDevice returns the most recent readings for one device.
func (r *ReadingsRepository) ListByDevice(ctx context.Context, deviceID string, limit int) ([]domain.SensorReading, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT reading_id, device_id, temperature, humidity, battery_level, recorded_at
		FROM sensor_readings
		WHERE device_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sensor readings: %w", err)
	}
	defer rows.Close()

	readings := []domain.SensorReading{}
	for rows.Next() {
		var sr domain.SensorReading
		if err := rows.Scan(
			&sr.ReadingID,
			&sr.DeviceID,
			&sr.Temperature,
			&sr.Humidity,
			&sr.BatteryLevel,
			&sr.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sensor reading: %w", err)
		}
		readings = append(readings, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sensor readings: %w", err)
	}
	return readings, nil
}
