package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/domain"
	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTelemetryService(t *testing.T) (*sql.DB, sqlmock.Sqlmock, TelemetryService) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger := zap.NewNop()
	svc := NewTelemetryService(
		repository.NewDevicesRepository(db, logger),
		repository.NewReadingsRepository(db, logger),
		repository.NewBatchesRepository(db, logger),
		repository.NewAlertsRepository(db, logger),
		repository.NewAuditRepository(db, logger),
		db,
		logger,
	)
	return db, mock, svc
}

func expectDeviceBySerial(mock sqlmock.Sqlmock, serial, deviceID string, locationID *string) {
	rows := sqlmock.NewRows([]string{
		"device_id", "storage_location_id", "serial_number", "device_type", "status", "last_seen",
	}).AddRow(deviceID, locationID, serial, domain.DeviceTypeSensor, "active", nil)

	mock.ExpectQuery(`SELECT`).
		WithArgs(serial).
		WillReturnRows(rows)
}

func TestIngest_ViolationOpensAlert(t *testing.T) {
	db, mock, svc := setupTelemetryService(t)
	defer db.Close()

	deviceID := uuid.New().String()
	locationID := uuid.New().String()
	expectDeviceBySerial(mock, "SN-0042", deviceID, &locationID)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO sensor_readings`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE iot_devices`).
		WithArgs(deviceID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT`).
		WithArgs(deviceID).
		WillReturnError(sql.ErrNoRows) // no open alert
	medRows := sqlmock.NewRows([]string{"medicine_id", "name", "min_temperature", "max_temperature"}).
		AddRow(uuid.New().String(), "Insulin", 2.0, 8.0)
	mock.ExpectQuery(`SELECT DISTINCT`).
		WithArgs(locationID).
		WillReturnRows(medRows)
	mock.ExpectExec(`INSERT INTO alerts`).
		WithArgs(sqlmock.AnyArg(), deviceID, domain.SeverityCritical,
			"Critical: Insulin needs 2-8°C, but current is 9°C", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	result, err := svc.Ingest(context.Background(), "SN-0042", ReadingInput{Temperature: 9.0, Humidity: 55})

	require.NoError(t, err)
	require.NotNil(t, result.AlertOpened)
	assert.Equal(t, domain.SeverityCritical, result.AlertOpened.Severity)
	assert.Nil(t, result.AlertResolved)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIngest_NominalAutoResolvesOpenAlert(t *testing.T) {
	db, mock, svc := setupTelemetryService(t)
	defer db.Close()

	deviceID := uuid.New().String()
	locationID := uuid.New().String()
	alertID := uuid.New().String()
	expectDeviceBySerial(mock, "SN-0042", deviceID, &locationID)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO sensor_readings`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE iot_devices`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	openRows := sqlmock.NewRows([]string{
		"alert_id", "device_id", "severity", "message", "is_resolved", "created_at", "resolved_at",
	}).AddRow(alertID, deviceID, domain.SeverityCritical, "too warm", false, time.Now(), nil)
	mock.ExpectQuery(`SELECT`).
		WithArgs(deviceID).
		WillReturnRows(openRows)
	medRows := sqlmock.NewRows([]string{"medicine_id", "name", "min_temperature", "max_temperature"}).
		AddRow(uuid.New().String(), "Insulin", 2.0, 8.0)
	mock.ExpectQuery(`SELECT DISTINCT`).
		WithArgs(locationID).
		WillReturnRows(medRows)
	mock.ExpectExec(`UPDATE alerts`).
		WithArgs(alertID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_logs`).
		WithArgs(nil, domain.AuditAlertAutoResolved, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	result, err := svc.Ingest(context.Background(), "SN-0042", ReadingInput{Temperature: 5.0})

	require.NoError(t, err)
	assert.Nil(t, result.AlertOpened)
	require.NotNil(t, result.AlertResolved)
	assert.Equal(t, alertID, result.AlertResolved.AlertID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIngest_ViolationWithOpenAlertIsNoOp(t *testing.T) {
	db, mock, svc := setupTelemetryService(t)
	defer db.Close()

	deviceID := uuid.New().String()
	locationID := uuid.New().String()
	expectDeviceBySerial(mock, "SN-0042", deviceID, &locationID)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO sensor_readings`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE iot_devices`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	openRows := sqlmock.NewRows([]string{
		"alert_id", "device_id", "severity", "message", "is_resolved", "created_at", "resolved_at",
	}).AddRow(uuid.New().String(), deviceID, domain.SeverityCritical, "too warm", false, time.Now(), nil)
	mock.ExpectQuery(`SELECT`).
		WithArgs(deviceID).
		WillReturnRows(openRows)
	medRows := sqlmock.NewRows([]string{"medicine_id", "name", "min_temperature", "max_temperature"}).
		AddRow(uuid.New().String(), "Insulin", 2.0, 8.0)
	mock.ExpectQuery(`SELECT DISTINCT`).
		WithArgs(locationID).
		WillReturnRows(medRows)
	mock.ExpectCommit()

	result, err := svc.Ingest(context.Background(), "SN-0042", ReadingInput{Temperature: 11.0})

	require.NoError(t, err)
	assert.Nil(t, result.AlertOpened)
	assert.Nil(t, result.AlertResolved)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIngest_NominalWithoutAlertStoresReadingOnly(t *testing.T) {
	db, mock, svc := setupTelemetryService(t)
	defer db.Close()

	deviceID := uuid.New().String()
	locationID := uuid.New().String()
	expectDeviceBySerial(mock, "SN-0042", deviceID, &locationID)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO sensor_readings`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE iot_devices`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT`).
		WithArgs(deviceID).
		WillReturnError(sql.ErrNoRows)
	medRows := sqlmock.NewRows([]string{"medicine_id", "name", "min_temperature", "max_temperature"}).
		AddRow(uuid.New().String(), "Insulin", 2.0, 8.0)
	mock.ExpectQuery(`SELECT DISTINCT`).
		WithArgs(locationID).
		WillReturnRows(medRows)
	mock.ExpectCommit()

	result, err := svc.Ingest(context.Background(), "SN-0042", ReadingInput{Temperature: 5.0})

	require.NoError(t, err)
	assert.Nil(t, result.AlertOpened)
	assert.Nil(t, result.AlertResolved)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIngest_UnassignedDeviceSkipsEvaluation(t *testing.T) {
	db, mock, svc := setupTelemetryService(t)
	defer db.Close()

	deviceID := uuid.New().String()
	expectDeviceBySerial(mock, "SN-0099", deviceID, nil)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO sensor_readings`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE iot_devices`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := svc.Ingest(context.Background(), "SN-0099", ReadingInput{Temperature: 40.0})

	require.NoError(t, err)
	assert.Nil(t, result.AlertOpened)
	assert.Nil(t, result.AlertResolved)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIngest_UnknownSerial(t *testing.T) {
	db, mock, svc := setupTelemetryService(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).
		WithArgs("SN-MISSING").
		WillReturnError(sql.ErrNoRows)

	result, err := svc.Ingest(context.Background(), "SN-MISSING", ReadingInput{Temperature: 5.0})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIngest_ReadingInsertFailureRollsBack(t *testing.T) {
	db, mock, svc := setupTelemetryService(t)
	defer db.Close()

	deviceID := uuid.New().String()
	locationID := uuid.New().String()
	expectDeviceBySerial(mock, "SN-0042", deviceID, &locationID)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO sensor_readings`).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	result, err := svc.Ingest(context.Background(), "SN-0042", ReadingInput{Temperature: 5.0})

	assert.Nil(t, result)
	assert.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}
