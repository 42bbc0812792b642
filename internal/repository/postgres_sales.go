package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SalesRepository persists receipts and their line items. All writes happen
// under the sale coordinator's transaction.
type SalesRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSalesRepository(db *sql.DB, logger *zap.Logger) *SalesRepository {
	return &SalesRepository{db: db, logger: logger}
}

// InsertSale creates the receipt row. The total starts at zero and is
// finalized by SetTotal once every line committed.
func (r *SalesRepository) InsertSale(ctx context.Context, q Querier, sale *domain.Sale) error {
	if sale.SaleID == "" {
		return fmt.Errorf("sale_id is required")
	}

	query := `
		INSERT INTO sales (sale_id, pharmacy_id, seller_id, total_amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := q.ExecContext(ctx, query,
		sale.SaleID,
		sale.PharmacyID,
		sale.SellerID,
		sale.TotalAmount,
		sale.Status,
		sale.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}
	return nil
}

// InsertItem appends one receipt line with its captured price.
func (r *SalesRepository) InsertItem(ctx context.Context, q Querier, item *domain.SaleItem) error {
	if item.ItemID == "" {
		return fmt.Errorf("item_id is required")
	}

	query := `
		INSERT INTO sale_items (item_id, sale_id, line_no, batch_id, quantity, price_at_moment)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := q.ExecContext(ctx, query,
		item.ItemID,
		item.SaleID,
		item.LineNo,
		item.BatchID,
		item.Quantity,
		item.PriceAtMoment,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sale item: %w", err)
	}
	return nil
}

// SetTotal finalizes the receipt total.
func (r *SalesRepository) SetTotal(ctx context.Context, q Querier, saleID string, total decimal.Decimal) error {
	result, err := q.ExecContext(ctx, `UPDATE sales SET total_amount = $2 WHERE sale_id = $1`, saleID, total)
	if err != nil {
		return fmt.Errorf("failed to set sale total: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("sale %s: %w", saleID, domain.ErrNotFound)
	}
	return nil
}

// Get reads one sale with its items in insertion order.
func (r *SalesRepository) Get(ctx context.Context, saleID string) (*domain.Sale, error) {
	query := `
		SELECT sale_id, pharmacy_id, seller_id, total_amount, status, created_at
		FROM sales
		WHERE sale_id = $1
	`

	var s domain.Sale
	var sellerID sql.NullString
	err := r.db.QueryRowContext(ctx, query, saleID).Scan(
		&s.SaleID,
		&s.PharmacyID,
		&sellerID,
		&s.TotalAmount,
		&s.Status,
		&s.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("sale %s: %w", saleID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get sale %s: %w", saleID, err)
	}
	if sellerID.Valid {
		s.SellerID = &sellerID.String
	}

	items, err := r.listItems(ctx, saleID)
	if err != nil {
		return nil, err
	}
	s.Items = items
	return &s, nil
}

// List returns sales visible in the tenant scope, newest first.
func (r *SalesRepository) List(ctx context.Context, scope domain.Scope, limit, offset int) ([]domain.Sale, error) {
	if scope.Empty() {
		return []domain.Sale{}, nil
	}
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT sale_id, pharmacy_id, seller_id, total_amount, status, created_at
		FROM sales
	`
	args := []any{}
	argN := 1
	if !scope.All {
		query += fmt.Sprintf(` WHERE pharmacy_id = $%d`, argN)
		args = append(args, scope.PharmacyID)
		argN++
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, argN, argN+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	sales := []domain.Sale{}
	for rows.Next() {
		var s domain.Sale
		var sellerID sql.NullString
		if err := rows.Scan(
			&s.SaleID,
			&s.PharmacyID,
			&sellerID,
			&s.TotalAmount,
			&s.Status,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		if sellerID.Valid {
			s.SellerID = &sellerID.String
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sales: %w", err)
	}

	for i := range sales {
		items, err := r.listItems(ctx, sales[i].SaleID)
		if err != nil {
			return nil, err
		}
		sales[i].Items = items
	}
	return sales, nil
}

func (r *SalesRepository) listItems(ctx context.Context, saleID string) ([]domain.SaleItem, error) {
	query := `
		SELECT item_id, sale_id, line_no, batch_id, quantity, price_at_moment
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY line_no
	`

	rows, err := r.db.QueryContext(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale items: %w", err)
	}
	defer rows.Close()

	items := []domain.SaleItem{}
	for rows.Next() {
		var it domain.SaleItem
		if err := rows.Scan(&it.ItemID, &it.SaleID, &it.LineNo, &it.BatchID, &it.Quantity, &it.PriceAtMoment); err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sale items: %w", err)
	}
	return items, nil
}
