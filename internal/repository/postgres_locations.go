package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/domain"

	"go.uber.org/zap"
)

// LocationsRepository persists storage locations (shelves, refrigerators).
type LocationsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewLocationsRepository(db *sql.DB, logger *zap.Logger) *LocationsRepository {
	return &LocationsRepository{db: db, logger: logger}
}

const locationColumns = `
	location_id, pharmacy_id, name, description, is_refrigerated`

// Create inserts a storage location.
func (r *LocationsRepository) Create(ctx context.Context, loc *domain.StorageLocation) error {
	if loc.LocationID == "" {
		return fmt.Errorf("location_id is required")
	}

	query := `
		INSERT INTO storage_locations (location_id, pharmacy_id, name, description, is_refrigerated)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		loc.LocationID,
		loc.PharmacyID,
		loc.Name,
		loc.Description,
		loc.IsRefrigerated,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("pharmacy %s: %w", loc.PharmacyID, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to create storage location: %w", err)
	}
	return nil
}

// Get reads one storage location.
func (r *LocationsRepository) Get(ctx context.Context, locationID string) (*domain.StorageLocation, error) {
	query := `SELECT` + locationColumns + ` FROM storage_locations WHERE location_id = $1`

	var loc domain.StorageLocation
	var description sql.NullString
	err := r.db.QueryRowContext(ctx, query, locationID).Scan(
		&loc.LocationID,
		&loc.PharmacyID,
		&loc.Name,
		&description,
		&loc.IsRefrigerated,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("storage location %s: %w", locationID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get storage location %s: %w", locationID, err)
	}
	if description.Valid {
		loc.Description = description.String
	}
	return &loc, nil
}

// List returns locations visible in the tenant scope.
func (r *LocationsRepository) List(ctx context.Context, scope domain.Scope) ([]domain.StorageLocation, error) {
	if scope.Empty() {
		return []domain.StorageLocation{}, nil
	}

	query := `SELECT` + locationColumns + ` FROM storage_locations`
	args := []any{}
	if !scope.All {
		query += ` WHERE pharmacy_id = $1`
		args = append(args, scope.PharmacyID)
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query storage locations: %w", err)
	}
	defer rows.Close()

	locations := []domain.StorageLocation{}
	for rows.Next() {
		var loc domain.StorageLocation
		var description sql.NullString
		if err := rows.Scan(
			&loc.LocationID,
			&loc.PharmacyID,
			&loc.Name,
			&description,
			&loc.IsRefrigerated,
		); err != nil {
			return nil, fmt.Errorf("failed to scan storage location: %w", err)
		}
		if description.Valid {
			loc.Description = description.String
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate storage locations: %w", err)
	}
	return locations, nil
}

// Delete removes a location. Batches or a device referencing it keep the row
// alive: the delete fails, it never cascades silently.
func (r *LocationsRepository) Delete(ctx context.Context, locationID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM storage_locations WHERE location_id = $1`, locationID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("storage location %s is referenced by batches or devices: %w", locationID, domain.ErrValidation)
		}
		return fmt.Errorf("failed to delete storage location %s: %w", locationID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("storage location %s: %w", locationID, domain.ErrNotFound)
	}
	return nil
}
