package service

import (
	"context"
	"fmt"
	"time"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/domain"
	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PharmacyInput describes a new pharmacy.
type PharmacyInput struct {
	Name              string     `json:"name"`
	Address           string     `json:"address"`
	LicenseNumber     string     `json:"license_number"`
	LicenseExpiryDate *time.Time `json:"license_expiry_date,omitempty"`
	Phone             string     `json:"phone,omitempty"`
}

// LocationInput describes a new storage location inside a pharmacy.
type LocationInput struct {
	PharmacyID     string `json:"pharmacy_id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	IsRefrigerated bool   `json:"is_refrigerated"`
}

// PharmacyService manages pharmacies and their storage locations.
type PharmacyService interface {
	CreatePharmacy(ctx context.Context, actor domain.Actor, input PharmacyInput) (*domain.Pharmacy, error)
	ListPharmacies(ctx context.Context, actor domain.Actor) ([]domain.Pharmacy, error)
	DeletePharmacy(ctx context.Context, actor domain.Actor, pharmacyID string) error

	CreateLocation(ctx context.Context, actor domain.Actor, input LocationInput) (*domain.StorageLocation, error)
	ListLocations(ctx context.Context, actor domain.Actor, pharmacyFilter string) ([]domain.StorageLocation, error)
	DeleteLocation(ctx context.Context, actor domain.Actor, locationID string) error
}

type pharmacyService struct {
	pharmaciesRepo *repository.PharmaciesRepository
	locationsRepo  *repository.LocationsRepository
	logger         *zap.Logger
}

func NewPharmacyService(
	pharmaciesRepo *repository.PharmaciesRepository,
	locationsRepo *repository.LocationsRepository,
	logger *zap.Logger,
) PharmacyService {
	return &pharmacyService{
		pharmaciesRepo: pharmaciesRepo,
		locationsRepo:  locationsRepo,
		logger:         logger,
	}
}

// CreatePharmacy onboards a pharmacy. Admin-only; license numbers are unique
// platform-wide.
func (s *pharmacyService) CreatePharmacy(ctx context.Context, actor domain.Actor, input PharmacyInput) (*domain.Pharmacy, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("only admins create pharmacies: %w", domain.ErrForbidden)
	}
	if input.Name == "" || input.LicenseNumber == "" {
		return nil, fmt.Errorf("name and license_number are required: %w", domain.ErrValidation)
	}

	pharmacy := &domain.Pharmacy{
		PharmacyID:        uuid.New().String(),
		Name:              input.Name,
		Address:           input.Address,
		LicenseNumber:     input.LicenseNumber,
		LicenseExpiryDate: input.LicenseExpiryDate,
		Phone:             input.Phone,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.pharmaciesRepo.Create(ctx, pharmacy); err != nil {
		return nil, err
	}

	s.logger.Info("pharmacy created",
		zap.String("pharmacy_id", pharmacy.PharmacyID),
		zap.String("license_number", pharmacy.LicenseNumber))
	return pharmacy, nil
}

// ListPharmacies returns the pharmacies the actor may see: admins all of them,
// everyone else only their own.
func (s *pharmacyService) ListPharmacies(ctx context.Context, actor domain.Actor) ([]domain.Pharmacy, error) {
	return s.pharmaciesRepo.List(ctx, domain.ScopeFor(actor, ""))
}

func (s *pharmacyService) DeletePharmacy(ctx context.Context, actor domain.Actor, pharmacyID string) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("only admins delete pharmacies: %w", domain.ErrForbidden)
	}
	return s.pharmaciesRepo.Delete(ctx, pharmacyID)
}

// CreateLocation adds a storage location. Admins anywhere, managers only in
// their own pharmacy, pharmacists never.
func (s *pharmacyService) CreateLocation(ctx context.Context, actor domain.Actor, input LocationInput) (*domain.StorageLocation, error) {
	if actor.Role == domain.RolePharmacist {
		return nil, fmt.Errorf("pharmacists cannot create storage locations: %w", domain.ErrForbidden)
	}
	if input.Name == "" || input.PharmacyID == "" {
		return nil, fmt.Errorf("name and pharmacy_id are required: %w", domain.ErrValidation)
	}
	if !actor.IsAdmin() && !domain.ScopeFor(actor, "").Allows(input.PharmacyID) {
		return nil, fmt.Errorf("pharmacy %s: %w", input.PharmacyID, domain.ErrForbidden)
	}

	location := &domain.StorageLocation{
		LocationID:     uuid.New().String(),
		PharmacyID:     input.PharmacyID,
		Name:           input.Name,
		Description:    input.Description,
		IsRefrigerated: input.IsRefrigerated,
	}
	if err := s.locationsRepo.Create(ctx, location); err != nil {
		return nil, err
	}

	s.logger.Info("storage location created",
		zap.String("location_id", location.LocationID),
		zap.String("pharmacy_id", location.PharmacyID))
	return location, nil
}

func (s *pharmacyService) ListLocations(ctx context.Context, actor domain.Actor, pharmacyFilter string) ([]domain.StorageLocation, error) {
	return s.locationsRepo.List(ctx, domain.ScopeFor(actor, pharmacyFilter))
}

// DeleteLocation removes a location. The delete fails while batches or a
// device still reference it.
func (s *pharmacyService) DeleteLocation(ctx context.Context, actor domain.Actor, locationID string) error {
	if actor.Role == domain.RolePharmacist {
		return fmt.Errorf("pharmacists cannot delete storage locations: %w", domain.ErrForbidden)
	}
	if !actor.IsAdmin() {
		location, err := s.locationsRepo.Get(ctx, locationID)
		if err != nil {
			return err
		}
		if !domain.ScopeFor(actor, "").Allows(location.PharmacyID) {
			return fmt.Errorf("storage location %s: %w", locationID, domain.ErrForbidden)
		}
	}
	return s.locationsRepo.Delete(ctx, locationID)
}
