package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/domain"
	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BatchInput is a goods-receipt request.
type BatchInput struct {
	MedicineID        string    `json:"medicine_id"`
	StorageLocationID string    `json:"storage_location_id"`
	BatchNumber       string    `json:"batch_number"`
	Quantity          int       `json:"quantity"`
	ExpirationDate    time.Time `json:"expiration_date"`
}

// ImportReport summarizes an Excel goods-receipt import.
type ImportReport struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors,omitempty"`
}

// InventoryService manages the medicine catalog and the stock ledger.
type InventoryService interface {
	CreateMedicine(ctx context.Context, actor domain.Actor, med *domain.Medicine) error
	ListMedicines(ctx context.Context) ([]domain.Medicine, error)
	DeleteMedicine(ctx context.Context, actor domain.Actor, medicineID string) error

	CreateBatch(ctx context.Context, actor domain.Actor, input BatchInput) (*domain.Batch, error)
	ListBatches(ctx context.Context, actor domain.Actor, pharmacyFilter string) ([]domain.Batch, error)
	ListExpiring(ctx context.Context, actor domain.Actor, pharmacyFilter string, daysToExpire int) ([]domain.Batch, error)
	Dispose(ctx context.Context, actor domain.Actor, batchID string, quantity int, reason string) (int, error)
	DeleteBatch(ctx context.Context, actor domain.Actor, batchID string) error

	ImportBatches(ctx context.Context, actor domain.Actor, file io.Reader) (*ImportReport, error)
	ExportStock(ctx context.Context, actor domain.Actor, pharmacyFilter string) ([]byte, error)
}

type inventoryService struct {
	medicinesRepo *repository.MedicinesRepository
	batchesRepo   *repository.BatchesRepository
	locationsRepo *repository.LocationsRepository
	auditRepo     *repository.AuditRepository
	db            *sql.DB
	logger        *zap.Logger
}

func NewInventoryService(
	medicinesRepo *repository.MedicinesRepository,
	batchesRepo *repository.BatchesRepository,
	locationsRepo *repository.LocationsRepository,
	auditRepo *repository.AuditRepository,
	db *sql.DB,
	logger *zap.Logger,
) InventoryService {
	return &inventoryService{
		medicinesRepo: medicinesRepo,
		batchesRepo:   batchesRepo,
		locationsRepo: locationsRepo,
		auditRepo:     auditRepo,
		db:            db,
		logger:        logger,
	}
}

// CreateMedicine adds a catalog entry. The catalog is platform-wide, so only
// admins write to it.
func (s *inventoryService) CreateMedicine(ctx context.Context, actor domain.Actor, med *domain.Medicine) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("only admins manage the medicine catalog: %w", domain.ErrForbidden)
	}
	if med.Name == "" {
		return fmt.Errorf("medicine name is required: %w", domain.ErrValidation)
	}
	if med.MedicineID == "" {
		med.MedicineID = uuid.New().String()
	}
	if med.CreatedAt.IsZero() {
		med.CreatedAt = time.Now().UTC()
	}
	return s.medicinesRepo.Create(ctx, med)
}

func (s *inventoryService) ListMedicines(ctx context.Context) ([]domain.Medicine, error) {
	return s.medicinesRepo.List(ctx)
}

func (s *inventoryService) DeleteMedicine(ctx context.Context, actor domain.Actor, medicineID string) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("only admins manage the medicine catalog: %w", domain.ErrForbidden)
	}
	return s.medicinesRepo.Delete(ctx, medicineID)
}

// CreateBatch records a goods receipt. Admins receive anywhere; managers only
// into their own pharmacy's locations. Pharmacists do not receive stock.
func (s *inventoryService) CreateBatch(ctx context.Context, actor domain.Actor, input BatchInput) (*domain.Batch, error) {
	if actor.Role == domain.RolePharmacist {
		return nil, fmt.Errorf("pharmacists cannot receive stock: %w", domain.ErrForbidden)
	}
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", domain.ErrValidation)
	}
	if input.BatchNumber == "" {
		return nil, fmt.Errorf("batch_number is required: %w", domain.ErrValidation)
	}

	location, err := s.locationsRepo.Get(ctx, input.StorageLocationID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !domain.ScopeFor(actor, "").Allows(location.PharmacyID) {
		return nil, fmt.Errorf("storage location %s: %w", input.StorageLocationID, domain.ErrForbidden)
	}

	batch := &domain.Batch{
		BatchID:           uuid.New().String(),
		MedicineID:        input.MedicineID,
		StorageLocationID: input.StorageLocationID,
		BatchNumber:       input.BatchNumber,
		InitialQuantity:   input.Quantity,
		CurrentQuantity:   input.Quantity,
		ExpirationDate:    input.ExpirationDate,
		ArrivalDate:       time.Now().UTC(),
	}
	if err := s.batchesRepo.Create(ctx, batch); err != nil {
		return nil, err
	}

	s.logger.Info("batch received",
		zap.String("batch_id", batch.BatchID),
		zap.String("batch_number", batch.BatchNumber),
		zap.Int("quantity", batch.InitialQuantity))
	return batch, nil
}

func (s *inventoryService) ListBatches(ctx context.Context, actor domain.Actor, pharmacyFilter string) ([]domain.Batch, error) {
	return s.batchesRepo.List(ctx, domain.ScopeFor(actor, pharmacyFilter))
}

// ListExpiring returns batches with remaining stock that expire within the
// given number of days (or already did).
func (s *inventoryService) ListExpiring(ctx context.Context, actor domain.Actor, pharmacyFilter string, daysToExpire int) ([]domain.Batch, error) {
	if daysToExpire < 0 {
		return nil, fmt.Errorf("days_to_expire must not be negative: %w", domain.ErrValidation)
	}
	target := time.Now().UTC().AddDate(0, 0, daysToExpire).Format("2006-01-02")
	return s.batchesRepo.ListExpiring(ctx, domain.ScopeFor(actor, pharmacyFilter), target)
}

// Dispose removes damaged or expired units from a batch. The deduction and its
// audit entry commit together, and the remaining quantity after the deduction
// is returned.
func (s *inventoryService) Dispose(ctx context.Context, actor domain.Actor, batchID string, quantity int, reason string) (int, error) {
	if actor.Role == domain.RolePharmacist {
		return 0, fmt.Errorf("pharmacists cannot dispose stock: %w", domain.ErrForbidden)
	}
	if quantity <= 0 {
		return 0, fmt.Errorf("quantity must be positive: %w", domain.ErrValidation)
	}
	if reason == "" {
		return 0, fmt.Errorf("disposal reason is required: %w", domain.ErrValidation)
	}

	var remaining int
	err := repository.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		batch, err := s.batchesRepo.GetForUpdate(ctx, tx, batchID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && !domain.ScopeFor(actor, "").Allows(batch.PharmacyID) {
			return fmt.Errorf("batch %s: %w", batchID, domain.ErrForbidden)
		}
		if batch.CurrentQuantity < quantity {
			return fmt.Errorf("batch %s has %d units, %d requested: %w",
				batchID, batch.CurrentQuantity, quantity, domain.ErrInsufficientStock)
		}

		remaining, err = s.batchesRepo.Deduct(ctx, tx, batchID, quantity)
		if err != nil {
			return err
		}

		details := map[string]any{
			"batch_number":     batch.BatchNumber,
			"medicine_id":      batch.MedicineID,
			"quantity_removed": quantity,
			"reason":           reason,
			"pharmacy_id":      batch.PharmacyID,
		}
		return s.auditRepo.Insert(ctx, tx, &actor.UserID, domain.AuditBatchDisposal, details)
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("batch disposal",
		zap.String("batch_id", batchID),
		zap.Int("quantity", quantity),
		zap.String("reason", reason))
	return remaining, nil
}

// DeleteBatch removes the batch record itself.
func (s *inventoryService) DeleteBatch(ctx context.Context, actor domain.Actor, batchID string) error {
	if actor.Role == domain.RolePharmacist {
		return fmt.Errorf("pharmacists cannot delete batches: %w", domain.ErrForbidden)
	}
	if !actor.IsAdmin() {
		batch, err := s.batchesRepo.GetWithPharmacy(ctx, batchID)
		if err != nil {
			return err
		}
		if !domain.ScopeFor(actor, "").Allows(batch.PharmacyID) {
			return fmt.Errorf("batch %s: %w", batchID, domain.ErrForbidden)
		}
	}
	return s.batchesRepo.Delete(ctx, batchID)
}
