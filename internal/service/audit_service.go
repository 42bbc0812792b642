package service

import (
	"context"
	"fmt"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/domain"
	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/repository"

	"go.uber.org/zap"
)

// AuditService exposes the audit journal to admins.
type AuditService interface {
	List(ctx context.Context, actor domain.Actor, limit, offset int) ([]domain.AuditLog, error)
}

type auditService struct {
	auditRepo *repository.AuditRepository
	logger    *zap.Logger
}

func NewAuditService(auditRepo *repository.AuditRepository, logger *zap.Logger) AuditService {
	return &auditService{auditRepo: auditRepo, logger: logger}
}

func (s *auditService) List(ctx context.Context, actor domain.Actor, limit, offset int) ([]domain.AuditLog, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("audit log is admin-only: %w", domain.ErrForbidden)
	}
	return s.auditRepo.List(ctx, limit, offset)
}
