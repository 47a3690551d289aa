package database

import (
	"fmt"

	"gorm.io/gorm"

	"crm-admin-gateway/internal/domain"
)

// AutoMigrate runs GORM auto-migration for all locally persisted models
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&domain.Session{},
		&domain.DeviceToken{},
		&domain.Notification{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run auto-migration: %w", err)
	}

	return nil
}
