package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crm-admin-gateway/internal/domain"
)

// NotificationRepository defines the interface for stored push events
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	FindByEmployee(ctx context.Context, employeeID string, limit int) ([]*domain.Notification, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) error
	DeleteDeliveredBefore(ctx context.Context, before time.Time) (int64, error)
}

// notificationRepositoryImpl is the GORM implementation of NotificationRepository
type notificationRepositoryImpl struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new instance of NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepositoryImpl{db: db}
}

// Create stores a received push event
func (r *notificationRepositoryImpl) Create(ctx context.Context, notification *domain.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// FindByEmployee lists stored events for an employee, newest first
func (r *notificationRepositoryImpl) FindByEmployee(ctx context.Context, employeeID string, limit int) ([]*domain.Notification, error) {
	var notifications []*domain.Notification
	query := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkDelivered flags a stored event as delivered to a session
func (r *notificationRepositoryImpl) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ?", id).
		Update("delivered", true).Error
}

// DeleteDeliveredBefore removes delivered events created before the given time
func (r *notificationRepositoryImpl) DeleteDeliveredBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("delivered = ? AND created_at < ?", true, before).
		Delete(&domain.Notification{})
	return result.RowsAffected, result.Error
}
