package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/domain"

	"go.uber.org/zap"
)

// PharmaciesRepository persists pharmacies (tenants).
type PharmaciesRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPharmaciesRepository(db *sql.DB, logger *zap.Logger) *PharmaciesRepository {
	return &PharmaciesRepository{db: db, logger: logger}
}

const pharmacyColumns = `
	pharmacy_id, name, address, license_number, license_expiry_date, phone, created_at`

// Create inserts a pharmacy. A duplicate license number maps to ErrValidation.
func (r *PharmaciesRepository) Create(ctx context.Context, p *domain.Pharmacy) error {
	if p.PharmacyID == "" {
		return fmt.Errorf("pharmacy_id is required")
	}

	query := `
		INSERT INTO pharmacies (pharmacy_id, name, address, license_number, license_expiry_date, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.PharmacyID,
		p.Name,
		p.Address,
		p.LicenseNumber,
		p.LicenseExpiryDate,
		p.Phone,
		p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("pharmacy with license %s already exists: %w", p.LicenseNumber, domain.ErrValidation)
		}
		return fmt.Errorf("failed to create pharmacy: %w", err)
	}
	return nil
}

// Get reads one pharmacy by id.
func (r *PharmaciesRepository) Get(ctx context.Context, pharmacyID string) (*domain.Pharmacy, error) {
	query := `SELECT` + pharmacyColumns + ` FROM pharmacies WHERE pharmacy_id = $1`

	var p domain.Pharmacy
	var expiry sql.NullTime
	var phone sql.NullString
	err := r.db.QueryRowContext(ctx, query, pharmacyID).Scan(
		&p.PharmacyID,
		&p.Name,
		&p.Address,
		&p.LicenseNumber,
		&expiry,
		&phone,
		&p.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("pharmacy %s: %w", pharmacyID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get pharmacy %s: %w", pharmacyID, err)
	}
	if expiry.Valid {
		p.LicenseExpiryDate = &expiry.Time
	}
	if phone.Valid {
		p.Phone = phone.String
	}
	return &p, nil
}

// List returns pharmacies visible in the tenant scope (admins all, everyone
// else only their own).
func (r *PharmaciesRepository) List(ctx context.Context, scope domain.Scope) ([]domain.Pharmacy, error) {
	if scope.Empty() {
		return []domain.Pharmacy{}, nil
	}

	query := `SELECT` + pharmacyColumns + ` FROM pharmacies`
	args := []any{}
	if !scope.All {
		query += ` WHERE pharmacy_id = $1`
		args = append(args, scope.PharmacyID)
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pharmacies: %w", err)
	}
	defer rows.Close()

	pharmacies := []domain.Pharmacy{}
	for rows.Next() {
		var p domain.Pharmacy
		var expiry sql.NullTime
		var phone sql.NullString
		if err := rows.Scan(
			&p.PharmacyID,
			&p.Name,
			&p.Address,
			&p.LicenseNumber,
			&expiry,
			&phone,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pharmacy: %w", err)
		}
		if expiry.Valid {
			p.LicenseExpiryDate = &expiry.Time
		}
		if phone.Valid {
			p.Phone = phone.String
		}
		pharmacies = append(pharmacies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pharmacies: %w", err)
	}
	return pharmacies, nil
}

// Delete removes a pharmacy. Referencing locations, users or sales keep the
// row alive: the delete fails instead of cascading.
func (r *PharmaciesRepository) Delete(ctx context.Context, pharmacyID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM pharmacies WHERE pharmacy_id = $1`, pharmacyID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("pharmacy %s is still referenced: %w", pharmacyID, domain.ErrValidation)
		}
		return fmt.Errorf("failed to delete pharmacy %s: %w", pharmacyID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("pharmacy %s: %w", pharmacyID, domain.ErrNotFound)
	}
	return nil
}
