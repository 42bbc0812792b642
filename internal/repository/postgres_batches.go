package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/domain"

	"go.uber.org/zap"
)

// BatchesRepository is the stock ledger. All quantity mutations go through
// GetForUpdate + Deduct inside one transaction, so two concurrent sales cannot
// both drain the same batch past zero.
type BatchesRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewBatchesRepository(db *sql.DB, logger *zap.Logger) *BatchesRepository {
	return &BatchesRepository{db: db, logger: logger}
}

const batchColumns = `
	b.batch_id,
	b.medicine_id,
	b.storage_location_id,
	b.batch_number,
	b.initial_quantity,
	b.current_quantity,
	b.expiration_date,
	b.arrival_date`

// Create inserts a new goods-receipt batch.
func (r *BatchesRepository) Create(ctx context.Context, batch *domain.Batch) error {
	if batch.BatchID == "" {
		return fmt.Errorf("batch_id is required")
	}

	query := `
		INSERT INTO batches (
			batch_id, medicine_id, storage_location_id, batch_number,
			initial_quantity, current_quantity, expiration_date, arrival_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		batch.BatchID,
		batch.MedicineID,
		batch.StorageLocationID,
		batch.BatchNumber,
		batch.InitialQuantity,
		batch.CurrentQuantity,
		batch.ExpirationDate,
		batch.ArrivalDate,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("medicine or storage location does not exist: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("failed to create batch: %w", err)
	}
	return nil
}

// GetForUpdate locks the batch row (and reports the owning pharmacy) for the
// duration of the surrounding transaction.
func (r *BatchesRepository) GetForUpdate(ctx context.Context, q Querier, batchID string) (*domain.BatchStock, error) {
	query := `
		SELECT` + batchColumns + `,
			sl.pharmacy_id
		FROM batches b
		JOIN storage_locations sl ON b.storage_location_id = sl.location_id
		WHERE b.batch_id = $1
		FOR UPDATE OF b
	`

	var bs domain.BatchStock
	err := q.QueryRowContext(ctx, query, batchID).Scan(
		&bs.BatchID,
		&bs.MedicineID,
		&bs.StorageLocationID,
		&bs.BatchNumber,
		&bs.InitialQuantity,
		&bs.CurrentQuantity,
		&bs.ExpirationDate,
		&bs.ArrivalDate,
		&bs.PharmacyID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("batch %s: %w", batchID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock batch %s: %w", batchID, err)
	}
	return &bs, nil
}

// Deduct decrements current_quantity, guarded in SQL so the quantity can never
// go negative even if the caller's pre-check raced. sql.ErrNoRows maps to
// insufficient stock because existence was already established under the lock.
func (r *BatchesRepository) Deduct(ctx context.Context, q Querier, batchID string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("quantity must be positive: %w", domain.ErrValidation)
	}

	query := `
		UPDATE batches
		SET current_quantity = current_quantity - $2
		WHERE batch_id = $1
		  AND current_quantity >= $2
		RETURNING current_quantity
	`

	var remaining int
	err := q.QueryRowContext(ctx, query, batchID, quantity).Scan(&remaining)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("batch %s: %w", batchID, domain.ErrInsufficientStock)
		}
		return 0, fmt.Errorf("failed to deduct from batch %s: %w", batchID, err)
	}
	return remaining, nil
}

// StoredMedicines returns the distinct medicines that currently have batches at
// a storage location, with their safe temperature ranges. Quantity is
// irrelevant: the presence of the batch record is what imposes the constraint.
func (r *BatchesRepository) StoredMedicines(ctx context.Context, q Querier, locationID string) ([]domain.StoredMedicine, error) {
	query := `
		SELECT DISTINCT m.medicine_id, m.name, m.min_temperature, m.max_temperature
		FROM batches b
		JOIN medicines m ON b.medicine_id = m.medicine_id
		WHERE b.storage_location_id = $1
		ORDER BY m.name
	`

	rows, err := q.QueryContext(ctx, query, locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stored medicines: %w", err)
	}
	defer rows.Close()

	meds := []domain.StoredMedicine{}
	for rows.Next() {
		var m domain.StoredMedicine
		if err := rows.Scan(&m.MedicineID, &m.Name, &m.MinTemperature, &m.MaxTemperature); err != nil {
			return nil, fmt.Errorf("failed to scan stored medicine: %w", err)
		}
		meds = append(meds, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stored medicines: %w", err)
	}
	return meds, nil
}

// List returns batches visible in the tenant scope.
func (r *BatchesRepository) List(ctx context.Context, scope domain.Scope) ([]domain.Batch, error) {
	if scope.Empty() {
		return []domain.Batch{}, nil
	}

	query := `
		SELECT` + batchColumns + `
		FROM batches b
		JOIN storage_locations sl ON b.storage_location_id = sl.location_id
	`
	args := []any{}
	if !scope.All {
		query += ` WHERE sl.pharmacy_id = $1`
		args = append(args, scope.PharmacyID)
	}
	query += ` ORDER BY b.arrival_date DESC`

	return r.queryBatches(ctx, query, args...)
}

// ListExpiring returns batches with remaining stock whose expiration date is on
// or before the target date, soonest first.
func (r *BatchesRepository) ListExpiring(ctx context.Context, scope domain.Scope, targetDate string) ([]domain.Batch, error) {
	if scope.Empty() {
		return []domain.Batch{}, nil
	}

	query := `
		SELECT` + batchColumns + `
		FROM batches b
		JOIN storage_locations sl ON b.storage_location_id = sl.location_id
		WHERE b.expiration_date <= $1
		  AND b.current_quantity > 0
	`
	args := []any{targetDate}
	if !scope.All {
		query += ` AND sl.pharmacy_id = $2`
		args = append(args, scope.PharmacyID)
	}
	query += ` ORDER BY b.expiration_date ASC`

	return r.queryBatches(ctx, query, args...)
}

// Delete removes a batch record entirely (administrative write-off of the row,
// distinct from a quantity disposal).
func (r *BatchesRepository) Delete(ctx context.Context, batchID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM batches WHERE batch_id = $1`, batchID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("batch %s is referenced by sales: %w", batchID, domain.ErrValidation)
		}
		return fmt.Errorf("failed to delete batch %s: %w", batchID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("batch %s: %w", batchID, domain.ErrNotFound)
	}
	return nil
}

// GetWithPharmacy reads a batch and its owning pharmacy without locking.
func (r *BatchesRepository) GetWithPharmacy(ctx context.Context, batchID string) (*domain.BatchStock, error) {
	query := `
		SELECT` + batchColumns + `,
			sl.pharmacy_id
		FROM batches b
		JOIN storage_locations sl ON b.storage_location_id = sl.location_id
		WHERE b.batch_id = $1
	`

	var bs domain.BatchStock
	err := r.db.QueryRowContext(ctx, query, batchID).Scan(
		&bs.BatchID,
		&bs.MedicineID,
		&bs.StorageLocationID,
		&bs.BatchNumber,
		&bs.InitialQuantity,
		&bs.CurrentQuantity,
		&bs.ExpirationDate,
		&bs.ArrivalDate,
		&bs.PharmacyID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("batch %s: %w", batchID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get batch %s: %w", batchID, err)
	}
	return &bs, nil
}

func (r *BatchesRepository) queryBatches(ctx context.Context, query string, args ...any) ([]domain.Batch, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	batches := []domain.Batch{}
	for rows.Next() {
		var b domain.Batch
		if err := rows.Scan(
			&b.BatchID,
			&b.MedicineID,
			&b.StorageLocationID,
			&b.BatchNumber,
			&b.InitialQuantity,
			&b.CurrentQuantity,
			&b.ExpirationDate,
			&b.ArrivalDate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate batches: %w", err)
	}
	return batches, nil
}
