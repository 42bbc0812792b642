package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupMockDevicesDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *DevicesRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger := zap.NewNop()
	repo := NewDevicesRepository(db, logger)

	return db, mock, repo
}

func TestCreateDevice_Success(t *testing.T) {
	db, mock, repo := setupMockDevicesDB(t)
	defer db.Close()

	locationID := uuid.New().String()
	device := &domain.IoTDevice{
		DeviceID:          uuid.New().String(),
		StorageLocationID: &locationID,
		SerialNumber:      "SN-0042",
		DeviceType:        domain.DeviceTypeSensor,
		Status:            "active",
	}

	mock.ExpectExec(`INSERT INTO iot_devices`).
		WithArgs(device.DeviceID, &locationID, "SN-0042", domain.DeviceTypeSensor, "active").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), device)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDevice_DuplicateSerial(t *testing.T) {
	db, mock, repo := setupMockDevicesDB(t)
	defer db.Close()

	device := &domain.IoTDevice{
		DeviceID:     uuid.New().String(),
		SerialNumber: "SN-0042",
		DeviceType:   domain.DeviceTypeSensor,
		Status:       "active",
	}

	mock.ExpectExec(`INSERT INTO iot_devices`).
		WithArgs(device.DeviceID, device.StorageLocationID, "SN-0042", domain.DeviceTypeSensor, "active").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), device)

	assert.ErrorIs(t, err, domain.ErrDuplicateSerial)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDevice_UnknownLocation(t *testing.T) {
	db, mock, repo := setupMockDevicesDB(t)
	defer db.Close()

	locationID := uuid.New().String()
	device := &domain.IoTDevice{
		DeviceID:          uuid.New().String(),
		StorageLocationID: &locationID,
		SerialNumber:      "SN-0043",
		DeviceType:        domain.DeviceTypeSensor,
		Status:            "active",
	}

	mock.ExpectExec(`INSERT INTO iot_devices`).
		WithArgs(device.DeviceID, &locationID, "SN-0043", domain.DeviceTypeSensor, "active").
		WillReturnError(&pq.Error{Code: "23503"})

	err := repo.Create(context.Background(), device)

	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDeviceBySerial_Success(t *testing.T) {
	db, mock, repo := setupMockDevicesDB(t)
	defer db.Close()

	deviceID := uuid.New().String()
	locationID := uuid.New().String()
	lastSeen := time.Now()

	rows := sqlmock.NewRows([]string{
		"device_id", "storage_location_id", "serial_number", "device_type", "status", "last_seen",
	}).AddRow(deviceID, locationID, "SN-0042", domain.DeviceTypeSensor, "active", lastSeen)

	mock.ExpectQuery(`SELECT`).
		WithArgs("SN-0042").
		WillReturnRows(rows)

	device, err := repo.GetBySerial(context.Background(), "SN-0042")

	require.NoError(t, err)
	assert.Equal(t, deviceID, device.DeviceID)
	require.NotNil(t, device.StorageLocationID)
	assert.Equal(t, locationID, *device.StorageLocationID)
	require.NotNil(t, device.LastSeen)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDeviceBySerial_Unknown(t *testing.T) {
	db, mock, repo := setupMockDevicesDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).
		WithArgs("SN-MISSING").
		WillReturnError(sql.ErrNoRows)

	device, err := repo.GetBySerial(context.Background(), "SN-MISSING")

	assert.Nil(t, device)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDevice_UnassignedHasNoPharmacy(t *testing.T) {
	db, mock, repo := setupMockDevicesDB(t)
	defer db.Close()

	deviceID := uuid.New().String()

	rows := sqlmock.NewRows([]string{
		"device_id", "storage_location_id", "serial_number", "device_type", "status", "last_seen", "pharmacy_id",
	}).AddRow(deviceID, nil, "SN-0099", domain.DeviceTypeSensor, "active", nil, nil)

	mock.ExpectQuery(`SELECT`).
		WithArgs(deviceID).
		WillReturnRows(rows)

	device, pharmacyID, err := repo.Get(context.Background(), deviceID)

	require.NoError(t, err)
	assert.Nil(t, device.StorageLocationID)
	assert.Nil(t, pharmacyID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListDevices_AdminSeesAll(t *testing.T) {
	db, mock, repo := setupMockDevicesDB(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"device_id", "storage_location_id", "serial_number", "device_type", "status", "last_seen",
	}).
		AddRow(uuid.New().String(), uuid.New().String(), "SN-0001", domain.DeviceTypeSensor, "active", time.Now()).
		AddRow(uuid.New().String(), nil, "SN-0002", domain.DeviceTypeSmartLock, "active", nil)

	mock.ExpectQuery(`SELECT`).
		WillReturnRows(rows)

	devices, err := repo.List(context.Background(), domain.Scope{All: true})

	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Nil(t, devices[1].StorageLocationID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListDevices_Scoped(t *testing.T) {
	db, mock, repo := setupMockDevicesDB(t)
	defer db.Close()

	pharmacyID := uuid.New().String()

	rows := sqlmock.NewRows([]string{
		"device_id", "storage_location_id", "serial_number", "device_type", "status", "last_seen",
	}).AddRow(uuid.New().String(), uuid.New().String(), "SN-0001", domain.DeviceTypeSensor, "active", nil)

	mock.ExpectQuery(`SELECT`).
		WithArgs(pharmacyID).
		WillReturnRows(rows)

	devices, err := repo.List(context.Background(), domain.Scope{PharmacyID: pharmacyID})

	require.NoError(t, err)
	assert.Len(t, devices, 1)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteDevice_NotFound(t *testing.T) {
	db, mock, repo := setupMockDevicesDB(t)
	defer db.Close()

	deviceID := uuid.New().String()

	mock.ExpectExec(`DELETE FROM iot_devices`).
		WithArgs(deviceID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), deviceID)

	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTouchLastSeen(t *testing.T) {
	db, mock, repo := setupMockDevicesDB(t)
	defer db.Close()

	deviceID := uuid.New().String()
	at := time.Now()

	mock.ExpectExec(`UPDATE iot_devices`).
		WithArgs(deviceID, at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.TouchLastSeen(context.Background(), db, deviceID, at)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
