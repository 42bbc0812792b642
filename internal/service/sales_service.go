package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/domain"
	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SalesService runs the point-of-sale workflow.
type SalesService interface {
	CreateSale(ctx context.Context, actor domain.Actor, lines []domain.SaleLine) (*domain.Sale, error)
	GetSale(ctx context.Context, actor domain.Actor, saleID string) (*domain.Sale, error)
	ListSales(ctx context.Context, actor domain.Actor, pharmacyFilter string, limit, offset int) ([]domain.Sale, error)
}

type salesService struct {
	salesRepo   *repository.SalesRepository
	batchesRepo *repository.BatchesRepository
	auditRepo   *repository.AuditRepository
	pricing     PricingPolicy
	db          *sql.DB
	logger      *zap.Logger
}

func NewSalesService(
	salesRepo *repository.SalesRepository,
	batchesRepo *repository.BatchesRepository,
	auditRepo *repository.AuditRepository,
	pricing PricingPolicy,
	db *sql.DB,
	logger *zap.Logger,
) SalesService {
	return &salesService{
		salesRepo:   salesRepo,
		batchesRepo: batchesRepo,
		auditRepo:   auditRepo,
		pricing:     pricing,
		db:          db,
		logger:      logger,
	}
}

// CreateSale sells from one or more batches atomically. Lines are processed
// strictly in cart order; each line locks its batch row, verifies it belongs
// to the seller's pharmacy and has enough stock, then deducts. The first
// failing line aborts the whole sale and no stock moves. The audit entry
// commits with the sale; if it cannot be written the sale rolls back too.
func (s *salesService) CreateSale(ctx context.Context, actor domain.Actor, lines []domain.SaleLine) (*domain.Sale, error) {
	if actor.PharmacyID == nil || *actor.PharmacyID == "" {
		return nil, fmt.Errorf("seller is not assigned to a pharmacy: %w", domain.ErrForbidden)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("sale has no items: %w", domain.ErrValidation)
	}
	for _, line := range lines {
		if line.BatchID == "" {
			return nil, fmt.Errorf("batch_id is required: %w", domain.ErrValidation)
		}
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("quantity must be positive: %w", domain.ErrValidation)
		}
	}

	sellerID := actor.UserID
	sale := &domain.Sale{
		SaleID:      uuid.New().String(),
		PharmacyID:  *actor.PharmacyID,
		SellerID:    &sellerID,
		TotalAmount: decimal.Zero,
		Status:      domain.SaleStatusCompleted,
		CreatedAt:   time.Now().UTC(),
	}

	err := repository.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.salesRepo.InsertSale(ctx, tx, sale); err != nil {
			return err
		}

		total := decimal.Zero
		auditItems := make([]map[string]any, 0, len(lines))

		for i, line := range lines {
			batch, err := s.batchesRepo.GetForUpdate(ctx, tx, line.BatchID)
			if err != nil {
				return err
			}
			if batch.PharmacyID != sale.PharmacyID {
				return fmt.Errorf("batch %s: %w", line.BatchID, domain.ErrCrossPharmacyAccess)
			}
			if batch.CurrentQuantity < line.Quantity {
				return fmt.Errorf("batch %s has %d units, %d requested: %w",
					line.BatchID, batch.CurrentQuantity, line.Quantity, domain.ErrInsufficientStock)
			}
			if _, err := s.batchesRepo.Deduct(ctx, tx, line.BatchID, line.Quantity); err != nil {
				return err
			}

			price := s.pricing.PriceFor(batch)
			subtotal := price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(subtotal)

			item := domain.SaleItem{
				ItemID:        uuid.New().String(),
				SaleID:        sale.SaleID,
				LineNo:        i + 1,
				BatchID:       line.BatchID,
				Quantity:      line.Quantity,
				PriceAtMoment: price,
			}
			if err := s.salesRepo.InsertItem(ctx, tx, &item); err != nil {
				return err
			}
			sale.Items = append(sale.Items, item)

			auditItems = append(auditItems, map[string]any{
				"batch":    batch.BatchNumber,
				"qty":      line.Quantity,
				"subtotal": subtotal.String(),
			})
		}

		if err := s.salesRepo.SetTotal(ctx, tx, sale.SaleID, total); err != nil {
			return err
		}
		sale.TotalAmount = total

		details := map[string]any{
			"sale_id": sale.SaleID,
			"total":   total.String(),
			"items":   auditItems,
		}
		return s.auditRepo.Insert(ctx, tx, &sellerID, domain.AuditSaleCreated, details)
	})
	if err != nil {
		sale.Items = nil
		return nil, err
	}

	s.logger.Info("sale completed",
		zap.String("sale_id", sale.SaleID),
		zap.String("pharmacy_id", sale.PharmacyID),
		zap.String("total", sale.TotalAmount.String()),
		zap.Int("items", len(sale.Items)))
	return sale, nil
}

// GetSale returns one sale if it is visible in the actor's tenant scope.
func (s *salesService) GetSale(ctx context.Context, actor domain.Actor, saleID string) (*domain.Sale, error) {
	sale, err := s.salesRepo.Get(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if !domain.ScopeFor(actor, "").Allows(sale.PharmacyID) {
		return nil, fmt.Errorf("sale %s: %w", saleID, domain.ErrForbidden)
	}
	return sale, nil
}

// ListSales returns sales visible in the actor's tenant scope, newest first.
func (s *salesService) ListSales(ctx context.Context, actor domain.Actor, pharmacyFilter string, limit, offset int) ([]domain.Sale, error) {
	return s.salesRepo.List(ctx, domain.ScopeFor(actor, pharmacyFilter), limit, offset)
}
