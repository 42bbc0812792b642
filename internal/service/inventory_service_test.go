package service

import (
	"bytes"
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
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func setupInventoryService(t *testing.T) (*sql.DB, sqlmock.Sqlmock, InventoryService) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger := zap.NewNop()
	svc := NewInventoryService(
		repository.NewMedicinesRepository(db, logger),
		repository.NewBatchesRepository(db, logger),
		repository.NewLocationsRepository(db, logger),
		repository.NewAuditRepository(db, logger),
		db,
		logger,
	)
	return db, mock, svc
}

func managerActor(pharmacyID string) domain.Actor {
	return domain.Actor{
		UserID:     uuid.New().String(),
		Role:       domain.RoleManager,
		PharmacyID: &pharmacyID,
	}
}

func TestCreateMedicine_AdminOnly(t *testing.T) {
	db, mock, svc := setupInventoryService(t)
	defer db.Close()

	med := &domain.Medicine{Name: "Insulin", MinTemperature: 2, MaxTemperature: 8}

	err := svc.CreateMedicine(context.Background(), managerActor(uuid.New().String()), med)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	mock.ExpectExec(`INSERT INTO medicines`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	admin := domain.Actor{UserID: uuid.New().String(), Role: domain.RoleAdmin}
	err = svc.CreateMedicine(context.Background(), admin, med)
	require.NoError(t, err)
	assert.NotEmpty(t, med.MedicineID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBatch_ManagerOwnPharmacy(t *testing.T) {
	db, mock, svc := setupInventoryService(t)
	defer db.Close()

	pharmacyID := uuid.New().String()
	locationID := uuid.New().String()
	actor := managerActor(pharmacyID)

	locRows := sqlmock.NewRows([]string{
		"location_id", "pharmacy_id", "name", "description", "is_refrigerated",
	}).AddRow(locationID, pharmacyID, "Fridge A", nil, true)
	mock.ExpectQuery(`SELECT`).
		WithArgs(locationID).
		WillReturnRows(locRows)
	mock.ExpectExec(`INSERT INTO batches`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	batch, err := svc.CreateBatch(context.Background(), actor, BatchInput{
		MedicineID:        uuid.New().String(),
		StorageLocationID: locationID,
		BatchNumber:       "LOT-2026-001",
		Quantity:          200,
		ExpirationDate:    time.Now().AddDate(1, 0, 0),
	})

	require.NoError(t, err)
	assert.Equal(t, 200, batch.InitialQuantity)
	assert.Equal(t, 200, batch.CurrentQuantity)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBatch_ManagerOtherPharmacyForbidden(t *testing.T) {
	db, mock, svc := setupInventoryService(t)
	defer db.Close()

	locationID := uuid.New().String()
	actor := managerActor(uuid.New().String())

	locRows := sqlmock.NewRows([]string{
		"location_id", "pharmacy_id", "name", "description", "is_refrigerated",
	}).AddRow(locationID, uuid.New().String(), "Fridge A", nil, true)
	mock.ExpectQuery(`SELECT`).
		WithArgs(locationID).
		WillReturnRows(locRows)

	batch, err := svc.CreateBatch(context.Background(), actor, BatchInput{
		MedicineID:        uuid.New().String(),
		StorageLocationID: locationID,
		BatchNumber:       "LOT-X",
		Quantity:          10,
		ExpirationDate:    time.Now().AddDate(1, 0, 0),
	})

	assert.Nil(t, batch)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBatch_PharmacistForbidden(t *testing.T) {
	db, mock, svc := setupInventoryService(t)
	defer db.Close()

	pharmacyID := uuid.New().String()
	actor := domain.Actor{
		UserID:     uuid.New().String(),
		Role:       domain.RolePharmacist,
		PharmacyID: &pharmacyID,
	}

	batch, err := svc.CreateBatch(context.Background(), actor, BatchInput{
		MedicineID:        uuid.New().String(),
		StorageLocationID: uuid.New().String(),
		BatchNumber:       "LOT-X",
		Quantity:          10,
		ExpirationDate:    time.Now().AddDate(1, 0, 0),
	})

	assert.Nil(t, batch)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDispose_DeductsAndAudits(t *testing.T) {
	db, mock, svc := setupInventoryService(t)
	defer db.Close()

	pharmacyID := uuid.New().String()
	batchID := uuid.New().String()
	actor := managerActor(pharmacyID)

	mock.ExpectBegin()
	batchRows := sqlmock.NewRows([]string{
		"batch_id", "medicine_id", "storage_location_id", "batch_number",
		"initial_quantity", "current_quantity", "expiration_date", "arrival_date",
		"pharmacy_id",
	}).AddRow(
		batchID, uuid.New().String(), uuid.New().String(), "LOT-2026-001",
		500, 120, time.Now().AddDate(0, -1, 0), time.Now().AddDate(-1, 0, 0),
		pharmacyID,
	)
	mock.ExpectQuery(`SELECT`).
		WithArgs(batchID).
		WillReturnRows(batchRows)
	deductRows := sqlmock.NewRows([]string{"current_quantity"}).AddRow(100)
	mock.ExpectQuery(`UPDATE batches`).
		WithArgs(batchID, 20).
		WillReturnRows(deductRows)
	mock.ExpectExec(`INSERT INTO audit_logs`).
		WithArgs(actor.UserID, domain.AuditBatchDisposal, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	remaining, err := svc.Dispose(context.Background(), actor, batchID, 20, "expired")

	require.NoError(t, err)
	assert.Equal(t, 100, remaining)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDispose_InsufficientStock(t *testing.T) {
	db, mock, svc := setupInventoryService(t)
	defer db.Close()

	pharmacyID := uuid.New().String()
	batchID := uuid.New().String()
	actor := managerActor(pharmacyID)

	mock.ExpectBegin()
	batchRows := sqlmock.NewRows([]string{
		"batch_id", "medicine_id", "storage_location_id", "batch_number",
		"initial_quantity", "current_quantity", "expiration_date", "arrival_date",
		"pharmacy_id",
	}).AddRow(
		batchID, uuid.New().String(), uuid.New().String(), "LOT-2026-001",
		500, 5, time.Now(), time.Now(),
		pharmacyID,
	)
	mock.ExpectQuery(`SELECT`).
		WithArgs(batchID).
		WillReturnRows(batchRows)
	mock.ExpectRollback()

	remaining, err := svc.Dispose(context.Background(), actor, batchID, 20, "damaged")

	assert.Zero(t, remaining)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDispose_RequiresReason(t *testing.T) {
	db, mock, svc := setupInventoryService(t)
	defer db.Close()

	actor := managerActor(uuid.New().String())

	_, err := svc.Dispose(context.Background(), actor, uuid.New().String(), 5, "")

	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListExpiring_RejectsNegativeDays(t *testing.T) {
	db, mock, svc := setupInventoryService(t)
	defer db.Close()

	actor := managerActor(uuid.New().String())

	_, err := svc.ListExpiring(context.Background(), actor, "", -1)

	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, mock.ExpectationsWereMet())
}

func buildImportWorkbook(t *testing.T, rows [][]any) []byte {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for col, header := range batchImportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, header))
	}
	for rowIdx, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return buf.Bytes()
}

func TestImportBatches_GoodAndBadRows(t *testing.T) {
	db, mock, svc := setupInventoryService(t)
	defer db.Close()

	pharmacyID := uuid.New().String()
	locationID := uuid.New().String()
	actor := managerActor(pharmacyID)

	workbook := buildImportWorkbook(t, [][]any{
		{"LOT-1", uuid.New().String(), locationID, "50", "2027-06-30"},
		{"LOT-2", uuid.New().String(), locationID, "not-a-number", "2027-06-30"},
	})

	locRows := sqlmock.NewRows([]string{
		"location_id", "pharmacy_id", "name", "description", "is_refrigerated",
	}).AddRow(locationID, pharmacyID, "Fridge A", nil, true)
	mock.ExpectQuery(`SELECT`).
		WithArgs(locationID).
		WillReturnRows(locRows)
	mock.ExpectExec(`INSERT INTO batches`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	report, err := svc.ImportBatches(context.Background(), actor, bytes.NewReader(workbook))

	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "row 3")

	require.NoError(t, mock.ExpectationsWereMet())
}
