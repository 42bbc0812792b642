package service

import (
	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/domain"

	"github.com/shopspring/decimal"
)

// PricingPolicy decides the unit price captured on a receipt line. The current
// policy is a flat configured price for every batch; a price catalog would slot
// in here without touching the sale workflow.
type PricingPolicy struct {
	UnitPrice decimal.Decimal
}

// PriceFor returns the unit price for one batch at sale time.
func (p PricingPolicy) PriceFor(batch *domain.BatchStock) decimal.Decimal {
	return p.UnitPrice
}
