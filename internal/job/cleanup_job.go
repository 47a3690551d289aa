package job

import (
	"context"
	"time"

	"go.uber.org/zap"

	"crm-admin-gateway/internal/repository"
)

const (
	// Device registrations older than this are re-registered by the
	// dashboard anyway, so the cached token has no value past it
	staleDeviceAge = 30 * 24 * time.Hour

	// Delivered notifications are kept for a while for the history view
	deliveredRetention = 7 * 24 * time.Hour
)

// CleanupJob sweeps expired sessions, stale device tokens and old delivered
// notifications from the local store
type CleanupJob struct {
	sessionRepo      repository.SessionRepository
	deviceRepo       repository.DeviceRepository
	notificationRepo repository.NotificationRepository
	logger           *zap.Logger
}

// NewCleanupJob creates a new CleanupJob instance
func NewCleanupJob(
	sessionRepo repository.SessionRepository,
	deviceRepo repository.DeviceRepository,
	notificationRepo repository.NotificationRepository,
	logger *zap.Logger,
) *CleanupJob {
	return &CleanupJob{
		sessionRepo:      sessionRepo,
		deviceRepo:       deviceRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Run executes one sweep. It satisfies cron.Job.
func (j *CleanupJob) Run() {
	ctx := context.Background()
	now := time.Now().UTC()

	j.logger.Info("Starting local store cleanup sweep")

	sessions, err := j.sessionRepo.DeleteExpired(ctx, now)
	if err != nil {
		j.logger.Error("Failed to delete expired sessions", zap.Error(err))
	}

	devices, err := j.deviceRepo.DeleteStale(ctx, now.Add(-staleDeviceAge))
	if err != nil {
		j.logger.Error("Failed to delete stale device tokens", zap.Error(err))
	}

	notifications, err := j.notificationRepo.DeleteDeliveredBefore(ctx, now.Add(-deliveredRetention))
	if err != nil {
		j.logger.Error("Failed to delete delivered notifications", zap.Error(err))
	}

	j.logger.Info("Cleanup sweep completed",
		zap.Int64("expired_sessions", sessions),
		zap.Int64("stale_devices", devices),
		zap.Int64("delivered_notifications", notifications),
	)
}
