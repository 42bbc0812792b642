package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/domain"
	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/repository"

	"go.uber.org/zap"
)

// AlertService exposes the alert views and the manual resolution path.
type AlertService interface {
	ListActive(ctx context.Context, actor domain.Actor, pharmacyFilter string) ([]domain.Alert, error)
	Resolve(ctx context.Context, actor domain.Actor, alertID string) (*domain.AlertDetail, error)
}

type alertService struct {
	alertsRepo *repository.AlertsRepository
	auditRepo  *repository.AuditRepository
	db         *sql.DB
	logger     *zap.Logger
}

func NewAlertService(
	alertsRepo *repository.AlertsRepository,
	auditRepo *repository.AuditRepository,
	db *sql.DB,
	logger *zap.Logger,
) AlertService {
	return &alertService{
		alertsRepo: alertsRepo,
		auditRepo:  auditRepo,
		db:         db,
		logger:     logger,
	}
}

// ListActive returns unresolved alerts visible in the actor's tenant scope.
func (s *alertService) ListActive(ctx context.Context, actor domain.Actor, pharmacyFilter string) ([]domain.Alert, error) {
	return s.alertsRepo.ListActive(ctx, domain.ScopeFor(actor, pharmacyFilter))
}

// Resolve closes an alert on a human's authority. Admins resolve anywhere,
// managers only in their own pharmacy, pharmacists not at all. The resolution
// and its audit entry commit together.
func (s *alertService) Resolve(ctx context.Context, actor domain.Actor, alertID string) (*domain.AlertDetail, error) {
	detail, err := s.alertsRepo.GetDetail(ctx, alertID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() {
		if actor.Role != domain.RoleManager {
			return nil, fmt.Errorf("role %s cannot resolve alerts: %w", actor.Role, domain.ErrForbidden)
		}
		if detail.PharmacyID == nil || !domain.ScopeFor(actor, "").Allows(*detail.PharmacyID) {
			return nil, fmt.Errorf("alert %s: %w", alertID, domain.ErrForbidden)
		}
	}

	resolvedAt := time.Now().UTC()
	err = repository.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.alertsRepo.Resolve(ctx, tx, alertID, resolvedAt); err != nil {
			return err
		}
		details := map[string]any{
			"alert_id":  detail.AlertID,
			"device_sn": detail.SerialNumber,
			"message":   detail.Message,
		}
		return s.auditRepo.Insert(ctx, tx, &actor.UserID, domain.AuditAlertResolved, details)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("alert resolved",
		zap.String("alert_id", alertID),
		zap.String("user_id", actor.UserID))

	detail.IsResolved = true
	detail.ResolvedAt = &resolvedAt
	return detail, nil
}
