package service

import (
	"context"
	"fmt"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/domain"
	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegisterDeviceInput describes a new sensor or smart lock.
type RegisterDeviceInput struct {
	SerialNumber      string  `json:"serial_number"`
	DeviceType        string  `json:"device_type"`
	StorageLocationID *string `json:"storage_location_id,omitempty"`
}

// DeviceService manages device registration and lifecycle.
type DeviceService interface {
	Register(ctx context.Context, actor domain.Actor, input RegisterDeviceInput) (*domain.IoTDevice, error)
	List(ctx context.Context, actor domain.Actor, pharmacyFilter string) ([]domain.IoTDevice, error)
	Delete(ctx context.Context, actor domain.Actor, deviceID string) error
}

type deviceService struct {
	devicesRepo   *repository.DevicesRepository
	locationsRepo *repository.LocationsRepository
	logger        *zap.Logger
}

func NewDeviceService(
	devicesRepo *repository.DevicesRepository,
	locationsRepo *repository.LocationsRepository,
	logger *zap.Logger,
) DeviceService {
	return &deviceService{
		devicesRepo:   devicesRepo,
		locationsRepo: locationsRepo,
		logger:        logger,
	}
}

// Register creates a device, optionally already assigned to a storage
// location. Admins register anywhere; managers only into their own pharmacy;
// pharmacists not at all. Serial numbers are globally unique.
func (s *deviceService) Register(ctx context.Context, actor domain.Actor, input RegisterDeviceInput) (*domain.IoTDevice, error) {
	if actor.Role == domain.RolePharmacist {
		return nil, fmt.Errorf("pharmacists cannot register devices: %w", domain.ErrForbidden)
	}
	if input.SerialNumber == "" {
		return nil, fmt.Errorf("serial_number is required: %w", domain.ErrValidation)
	}
	if input.DeviceType != domain.DeviceTypeSensor && input.DeviceType != domain.DeviceTypeSmartLock {
		return nil, fmt.Errorf("unknown device type %q: %w", input.DeviceType, domain.ErrValidation)
	}

	if input.StorageLocationID != nil {
		location, err := s.locationsRepo.Get(ctx, *input.StorageLocationID)
		if err != nil {
			return nil, err
		}
		if !actor.IsAdmin() && !domain.ScopeFor(actor, "").Allows(location.PharmacyID) {
			return nil, fmt.Errorf("storage location %s: %w", *input.StorageLocationID, domain.ErrForbidden)
		}
	} else if !actor.IsAdmin() {
		// Unassigned devices float outside every tenant, only admins hold them.
		return nil, fmt.Errorf("only admins register unassigned devices: %w", domain.ErrForbidden)
	}

	device := &domain.IoTDevice{
		DeviceID:          uuid.New().String(),
		StorageLocationID: input.StorageLocationID,
		SerialNumber:      input.SerialNumber,
		DeviceType:        input.DeviceType,
		Status:            "active",
	}
	if err := s.devicesRepo.Create(ctx, device); err != nil {
		return nil, err
	}

	s.logger.Info("device registered",
		zap.String("device_id", device.DeviceID),
		zap.String("serial_number", device.SerialNumber),
		zap.String("device_type", device.DeviceType))
	return device, nil
}

// List returns devices in the actor's scope. Admins also see unassigned
// devices.
func (s *deviceService) List(ctx context.Context, actor domain.Actor, pharmacyFilter string) ([]domain.IoTDevice, error) {
	return s.devicesRepo.List(ctx, domain.ScopeFor(actor, pharmacyFilter))
}

// Delete removes a device. Managers may delete devices in their own pharmacy;
// deleting an unassigned device is admin-only.
func (s *deviceService) Delete(ctx context.Context, actor domain.Actor, deviceID string) error {
	if actor.Role == domain.RolePharmacist {
		return fmt.Errorf("pharmacists cannot delete devices: %w", domain.ErrForbidden)
	}

	_, pharmacyID, err := s.devicesRepo.Get(ctx, deviceID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		if pharmacyID == nil {
			return fmt.Errorf("device %s is unassigned: %w", deviceID, domain.ErrForbidden)
		}
		if !domain.ScopeFor(actor, "").Allows(*pharmacyID) {
			return fmt.Errorf("device %s: %w", deviceID, domain.ErrForbidden)
		}
	}
	return s.devicesRepo.Delete(ctx, deviceID)
}
