package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crm-admin-gateway/internal/domain"
)

// SessionRepository defines the interface for session persistence
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Session, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// sessionRepositoryImpl is the GORM implementation of SessionRepository
type sessionRepositoryImpl struct {
	db *gorm.DB
}

// NewSessionRepository creates a new instance of SessionRepository
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepositoryImpl{db: db}
}

// Create stores a new session, replacing any previous session for the user
func (r *sessionRepositoryImpl) Create(ctx context.Context, session *domain.Session) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", session.UserID).Delete(&domain.Session{}).Error; err != nil {
			return err
		}
		return tx.Create(session).Error
	})
}

// FindByUserID finds the most recent session for a user
func (r *sessionRepositoryImpl) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
	var session domain.Session
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteByUserID soft deletes all sessions for a user
func (r *sessionRepositoryImpl) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.Session{}).Error
}

// DeleteExpired soft deletes sessions whose expiry is before the given time
func (r *sessionRepositoryImpl) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&domain.Session{})
	return result.RowsAffected, result.Error
}
