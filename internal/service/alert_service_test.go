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

func setupAlertService(t *testing.T) (*sql.DB, sqlmock.Sqlmock, AlertService) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger := zap.NewNop()
	svc := NewAlertService(
		repository.NewAlertsRepository(db, logger),
		repository.NewAuditRepository(db, logger),
		db,
		logger,
	)
	return db, mock, svc
}

func expectAlertDetail(mock sqlmock.Sqlmock, alertID, serial string, pharmacyID *string) {
	rows := sqlmock.NewRows([]string{
		"alert_id", "device_id", "severity", "message", "is_resolved",
		"created_at", "resolved_at", "serial_number", "pharmacy_id",
	}).AddRow(
		alertID, uuid.New().String(), domain.SeverityCritical, "too warm",
		false, time.Now(), nil, serial, pharmacyID,
	)
	mock.ExpectQuery(`SELECT`).
		WithArgs(alertID).
		WillReturnRows(rows)
}

func TestResolveAlert_ManagerOwnPharmacy(t *testing.T) {
	db, mock, svc := setupAlertService(t)
	defer db.Close()

	pharmacyID := uuid.New().String()
	alertID := uuid.New().String()
	actor := domain.Actor{
		UserID:     uuid.New().String(),
		Role:       domain.RoleManager,
		PharmacyID: &pharmacyID,
	}

	expectAlertDetail(mock, alertID, "SN-0042", &pharmacyID)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE alerts`).
		WithArgs(alertID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_logs`).
		WithArgs(actor.UserID, domain.AuditAlertResolved, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	detail, err := svc.Resolve(context.Background(), actor, alertID)

	require.NoError(t, err)
	assert.True(t, detail.IsResolved)
	assert.NotNil(t, detail.ResolvedAt)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveAlert_PharmacistForbidden(t *testing.T) {
	db, mock, svc := setupAlertService(t)
	defer db.Close()

	pharmacyID := uuid.New().String()
	alertID := uuid.New().String()
	actor := domain.Actor{
		UserID:     uuid.New().String(),
		Role:       domain.RolePharmacist,
		PharmacyID: &pharmacyID,
	}

	expectAlertDetail(mock, alertID, "SN-0042", &pharmacyID)

	detail, err := svc.Resolve(context.Background(), actor, alertID)

	assert.Nil(t, detail)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveAlert_ManagerOtherPharmacyForbidden(t *testing.T) {
	db, mock, svc := setupAlertService(t)
	defer db.Close()

	pharmacyID := uuid.New().String()
	otherPharmacy := uuid.New().String()
	alertID := uuid.New().String()
	actor := domain.Actor{
		UserID:     uuid.New().String(),
		Role:       domain.RoleManager,
		PharmacyID: &pharmacyID,
	}

	expectAlertDetail(mock, alertID, "SN-0042", &otherPharmacy)

	detail, err := svc.Resolve(context.Background(), actor, alertID)

	assert.Nil(t, detail)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveAlert_AlreadyResolved(t *testing.T) {
	db, mock, svc := setupAlertService(t)
	defer db.Close()

	alertID := uuid.New().String()
	actor := domain.Actor{UserID: uuid.New().String(), Role: domain.RoleAdmin}

	expectAlertDetail(mock, alertID, "SN-0042", nil)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE alerts`).
		WithArgs(alertID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	detail, err := svc.Resolve(context.Background(), actor, alertID)

	assert.Nil(t, detail)
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveAlert_NotFound(t *testing.T) {
	db, mock, svc := setupAlertService(t)
	defer db.Close()

	alertID := uuid.New().String()
	actor := domain.Actor{UserID: uuid.New().String(), Role: domain.RoleAdmin}

	mock.ExpectQuery(`SELECT`).
		WithArgs(alertID).
		WillReturnError(sql.ErrNoRows)

	detail, err := svc.Resolve(context.Background(), actor, alertID)

	assert.Nil(t, detail)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
