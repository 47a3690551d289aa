package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"crm-admin-gateway/internal/domain"
)

// DeviceRepository defines the interface for device token persistence
type DeviceRepository interface {
	Upsert(ctx context.Context, device *domain.DeviceToken) error
	FindByEmployeeAndPlatform(ctx context.Context, employeeID string, platform domain.Platform) (*domain.DeviceToken, error)
	DeleteStale(ctx context.Context, registeredBefore time.Time) (int64, error)
}

// deviceRepositoryImpl is the GORM implementation of DeviceRepository
type deviceRepositoryImpl struct {
	db *gorm.DB
}

// NewDeviceRepository creates a new instance of DeviceRepository
func NewDeviceRepository(db *gorm.DB) DeviceRepository {
	return &deviceRepositoryImpl{db: db}
}

// Upsert creates or replaces the registration for an employee/platform pair
func (r *deviceRepositoryImpl) Upsert(ctx context.Context, device *domain.DeviceToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("employee_id = ? AND platform = ?", device.EmployeeID, device.Platform).
			Delete(&domain.DeviceToken{}).Error; err != nil {
			return err
		}
		return tx.Create(device).Error
	})
}

// FindByEmployeeAndPlatform finds the current registration for an
// employee/platform pair, returning nil when none exists
func (r *deviceRepositoryImpl) FindByEmployeeAndPlatform(ctx context.Context, employeeID string, platform domain.Platform) (*domain.DeviceToken, error) {
	var device domain.DeviceToken
	if err := r.db.WithContext(ctx).
		Where("employee_id = ? AND platform = ?", employeeID, platform).
		First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &device, nil
}

// DeleteStale removes registrations older than the given time
func (r *deviceRepositoryImpl) DeleteStale(ctx context.Context, registeredBefore time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("registered_at < ?", registeredBefore).
		Delete(&domain.DeviceToken{})
	return result.RowsAffected, result.Error
}
