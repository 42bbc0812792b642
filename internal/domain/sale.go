package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale statuses.
const SaleStatusCompleted = "completed"

// Sale is a point-of-sale receipt. TotalAmount is finalized only after every
// line item committed; the whole sale is all-or-nothing.
type Sale struct {
	SaleID      string          `db:"sale_id"` // UUID, PRIMARY KEY
	PharmacyID  string          `db:"pharmacy_id"`
	SellerID    *string         `db:"seller_id"` // nullable
	TotalAmount decimal.Decimal `db:"total_amount"`
	Status      string          `db:"status"`
	CreatedAt   time.Time       `db:"created_at"`

	Items []SaleItem
}

// SaleItem is one receipt line. PriceAtMoment is captured at transaction time
// and never updated, so historical totals survive future price changes.
type SaleItem struct {
	ItemID        string          `db:"item_id"` // UUID, PRIMARY KEY
	SaleID        string          `db:"sale_id"`
	LineNo        int             `db:"line_no"` // 1-based cart position
	BatchID       string          `db:"batch_id"`
	Quantity      int             `db:"quantity"`
	PriceAtMoment decimal.Decimal `db:"price_at_moment"`
}

// SaleLine is one requested cart position. Lines are processed strictly in
// input order; the first failing line aborts the sale.
type SaleLine struct {
	BatchID  string `json:"batch_id"`
	Quantity int    `json:"quantity"`
}
