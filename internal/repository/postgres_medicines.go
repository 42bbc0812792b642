package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/domain"

	"go.uber.org/zap"
)

// MedicinesRepository persists the global medicine catalog.
type MedicinesRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewMedicinesRepository(db *sql.DB, logger *zap.Logger) *MedicinesRepository {
	return &MedicinesRepository{db: db, logger: logger}
}

const medicineColumns = `
	medicine_id, name, manufacturer, description, min_temperature, max_temperature,
	is_prescription, requires_smart_lock, created_at`

// Create inserts a catalog entry.
func (r *MedicinesRepository) Create(ctx context.Context, med *domain.Medicine) error {
	if med.MedicineID == "" {
		return fmt.Errorf("medicine_id is required")
	}
	if med.MinTemperature >= med.MaxTemperature {
		return fmt.Errorf("min_temperature must be below max_temperature: %w", domain.ErrValidation)
	}

	query := `
		INSERT INTO medicines (medicine_id, name, manufacturer, description,
			min_temperature, max_temperature, is_prescription, requires_smart_lock, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		med.MedicineID,
		med.Name,
		med.Manufacturer,
		med.Description,
		med.MinTemperature,
		med.MaxTemperature,
		med.IsPrescription,
		med.RequiresSmartLock,
		med.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medicine: %w", err)
	}
	return nil
}

// Get reads one catalog entry.
func (r *MedicinesRepository) Get(ctx context.Context, medicineID string) (*domain.Medicine, error) {
	query := `SELECT` + medicineColumns + ` FROM medicines WHERE medicine_id = $1`

	med, err := scanMedicine(r.db.QueryRowContext(ctx, query, medicineID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("medicine %s: %w", medicineID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get medicine %s: %w", medicineID, err)
	}
	return med, nil
}

// List returns the whole catalog ordered by name. The catalog is shared
// across pharmacies, so no tenant scoping applies.
func (r *MedicinesRepository) List(ctx context.Context) ([]domain.Medicine, error) {
	query := `SELECT` + medicineColumns + ` FROM medicines ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query medicines: %w", err)
	}
	defer rows.Close()

	medicines := []domain.Medicine{}
	for rows.Next() {
		med, err := scanMedicine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan medicine: %w", err)
		}
		medicines = append(medicines, *med)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate medicines: %w", err)
	}
	return medicines, nil
}

// Delete removes a catalog entry unless batches still reference it.
func (r *MedicinesRepository) Delete(ctx context.Context, medicineID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM medicines WHERE medicine_id = $1`, medicineID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("medicine %s is referenced by batches: %w", medicineID, domain.ErrValidation)
		}
		return fmt.Errorf("failed to delete medicine %s: %w", medicineID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("medicine %s: %w", medicineID, domain.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedicine(row rowScanner) (*domain.Medicine, error) {
	var med domain.Medicine
	var description sql.NullString
	err := row.Scan(
		&med.MedicineID,
		&med.Name,
		&med.Manufacturer,
		&description,
		&med.MinTemperature,
		&med.MaxTemperature,
		&med.IsPrescription,
		&med.RequiresSmartLock,
		&med.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		med.Description = description.String
	}
	return &med, nil
}
