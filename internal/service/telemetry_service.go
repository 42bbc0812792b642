package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/domain"
	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReadingInput is one telemetry sample as reported by a device.
type ReadingInput struct {
	Temperature  float64   `json:"temperature"`
	Humidity     float64   `json:"humidity"`
	BatteryLevel int       `json:"battery_level"`
	RecordedAt   time.Time `json:"recorded_at,omitempty"`
}

// IngestResult reports what a reading did to the alert state machine.
type IngestResult struct {
	Reading       *domain.SensorReading
	AlertOpened   *domain.Alert
	AlertResolved *domain.Alert
}

// TelemetryService ingests device readings and drives the alert lifecycle.
type TelemetryService interface {
	Ingest(ctx context.Context, serialNumber string, input ReadingInput) (*IngestResult, error)
	ListReadings(ctx context.Context, actor domain.Actor, deviceID string, limit int) ([]domain.SensorReading, error)
}

type telemetryService struct {
	devicesRepo  *repository.DevicesRepository
	readingsRepo *repository.ReadingsRepository
	batchesRepo  *repository.BatchesRepository
	alertsRepo   *repository.AlertsRepository
	auditRepo    *repository.AuditRepository
	db           *sql.DB
	logger       *zap.Logger
}

func NewTelemetryService(
	devicesRepo *repository.DevicesRepository,
	readingsRepo *repository.ReadingsRepository,
	batchesRepo *repository.BatchesRepository,
	alertsRepo *repository.AlertsRepository,
	auditRepo *repository.AuditRepository,
	db *sql.DB,
	logger *zap.Logger,
) TelemetryService {
	return &telemetryService{
		devicesRepo:  devicesRepo,
		readingsRepo: readingsRepo,
		batchesRepo:  batchesRepo,
		alertsRepo:   alertsRepo,
		auditRepo:    auditRepo,
		db:           db,
		logger:       logger,
	}
}

// Ingest persists a reading, then evaluates it against the safe ranges of the
// medicines stored at the device's location, all in one transaction:
//
//   - violation and no open alert: open a critical alert
//   - reading back in range and an alert is open: auto-resolve it
//   - violation while an alert is already open: no new alert
//
// An unassigned device only gets its reading stored. Telemetry is keyed by
// serial number; an unknown serial is rejected.
func (s *telemetryService) Ingest(ctx context.Context, serialNumber string, input ReadingInput) (*IngestResult, error) {
	device, err := s.devicesRepo.GetBySerial(ctx, serialNumber)
	if err != nil {
		return nil, err
	}

	recordedAt := input.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	reading := &domain.SensorReading{
		ReadingID:    uuid.New().String(),
		DeviceID:     device.DeviceID,
		Temperature:  input.Temperature,
		Humidity:     input.Humidity,
		BatteryLevel: input.BatteryLevel,
		RecordedAt:   recordedAt,
	}

	result := &IngestResult{Reading: reading}

	err = repository.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.readingsRepo.Insert(ctx, tx, reading); err != nil {
			return err
		}
		if err := s.devicesRepo.TouchLastSeen(ctx, tx, device.DeviceID, recordedAt); err != nil {
			return err
		}

		if device.StorageLocationID == nil {
			return nil
		}

		open, err := s.alertsRepo.GetOpenForUpdate(ctx, tx, device.DeviceID)
		if err != nil {
			return err
		}
		medicines, err := s.batchesRepo.StoredMedicines(ctx, tx, *device.StorageLocationID)
		if err != nil {
			return err
		}

		violation := EvaluateThresholds(medicines, input.Temperature)

		switch {
		case violation != nil && open == nil:
			alert := &domain.Alert{
				AlertID:   uuid.New().String(),
				DeviceID:  device.DeviceID,
				Severity:  domain.SeverityCritical,
				Message:   violation.Message(),
				CreatedAt: recordedAt,
			}
			created, err := s.alertsRepo.CreateOpen(ctx, tx, alert)
			if err != nil {
				return err
			}
			if created {
				result.AlertOpened = alert
			}

		case violation == nil && open != nil:
			if err := s.alertsRepo.Resolve(ctx, tx, open.AlertID, recordedAt); err != nil {
				return err
			}
			details := map[string]any{
				"alert_id": open.AlertID,
				"reason":   fmt.Sprintf("Temperature normalized to %g°C", input.Temperature),
				"device":   device.SerialNumber,
			}
			if err := s.auditRepo.Insert(ctx, tx, nil, domain.AuditAlertAutoResolved, details); err != nil {
				return err
			}
			result.AlertResolved = open
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.AlertOpened != nil {
		s.logger.Warn("alert opened",
			zap.String("serial_number", serialNumber),
			zap.String("alert_id", result.AlertOpened.AlertID),
			zap.Float64("temperature", input.Temperature))
	}
	if result.AlertResolved != nil {
		s.logger.Info("alert auto-resolved",
			zap.String("serial_number", serialNumber),
			zap.String("alert_id", result.AlertResolved.AlertID),
			zap.Float64("temperature", input.Temperature))
	}
	return result, nil
}

// ListReadings returns recent readings for a device the actor may see.
func (s *telemetryService) ListReadings(ctx context.Context, actor domain.Actor, deviceID string, limit int) ([]domain.SensorReading, error) {
	_, pharmacyID, err := s.devicesRepo.Get(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		if pharmacyID == nil || !domain.ScopeFor(actor, "").Allows(*pharmacyID) {
			return nil, fmt.Errorf("device %s: %w", deviceID, domain.ErrForbidden)
		}
	}
	return s.readingsRepo.ListByDevice(ctx, deviceID, limit)
}
