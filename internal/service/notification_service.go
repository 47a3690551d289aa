package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"crm-admin-gateway/internal/client"
	"crm-admin-gateway/internal/domain"
	"crm-admin-gateway/internal/dto"
	"crm-admin-gateway/internal/metrics"
	"crm-admin-gateway/internal/push"
	"crm-admin-gateway/internal/repository"
	"crm-admin-gateway/internal/response"
)

// NotificationService defines the interface for the push notification boundary.
// Registration failures never surface as errors to the dashboard; they degrade
// to notifications-disabled with a logged diagnostic.
type NotificationService interface {
	RegisterDevice(ctx context.Context, token string, req *dto.RegisterDeviceRequest) (*dto.RegisterDeviceResponse, error)
	Receive(ctx context.Context, event *domain.PushEvent) (bool, error)
	List(ctx context.Context, employeeID string, limit int) ([]*dto.NotificationResponse, error)
}

// notificationServiceImpl is the implementation of NotificationService
type notificationServiceImpl struct {
	deviceClient     client.DeviceClient
	deviceRepo       repository.DeviceRepository
	notificationRepo repository.NotificationRepository
	hub              *push.Hub
	logger           *zap.Logger
	metrics          *metrics.Metrics
}

// NewNotificationService creates a new instance of NotificationService
func NewNotificationService(
	deviceClient client.DeviceClient,
	deviceRepo repository.DeviceRepository,
	notificationRepo repository.NotificationRepository,
	hub *push.Hub,
	logger *zap.Logger,
	m *metrics.Metrics,
) NotificationService {
	return &notificationServiceImpl{
		deviceClient:     deviceClient,
		deviceRepo:       deviceRepo,
		notificationRepo: notificationRepo,
		hub:              hub,
		logger:           logger,
		metrics:          m,
	}
}

// RegisterDevice relays a push registration to the backend. An unchanged
// token for the same employee/platform pair skips the backend call. Every
// failure path answers enabled=false instead of an error so the dashboard
// keeps working without push.
func (s *notificationServiceImpl) RegisterDevice(ctx context.Context, token string, req *dto.RegisterDeviceRequest) (*dto.RegisterDeviceResponse, error) {
	platform := domain.Platform(req.Platform)
	if !domain.IsValidPlatform(platform) {
		err := response.NewNotSupportedError("Notifications are not supported on platform: " + req.Platform)
		s.logger.Warn("Push registration degraded", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return &dto.RegisterDeviceResponse{Enabled: false, Reason: "platform not supported"}, nil
	}

	if req.Permission == "denied" {
		err := response.NewPermissionDeniedError("Notification permission was declined")
		s.logger.Warn("Push registration degraded", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return &dto.RegisterDeviceResponse{Enabled: false, Reason: "permission denied"}, nil
	}

	existing, err := s.deviceRepo.FindByEmployeeAndPlatform(ctx, req.EmployeeID, platform)
	if err != nil {
		s.logger.Warn("Failed to read cached device token", zap.Error(err))
	}
	if existing != nil && existing.Token == req.Token {
		return &dto.RegisterDeviceResponse{Enabled: true}, nil
	}

	registration := client.DeviceRegistration{
		EmployeeID: req.EmployeeID,
		Platform:   platform,
		Token:      req.Token,
	}
	if err := s.deviceClient.RegisterDevice(ctx, token, registration); err != nil {
		s.logger.Warn("Push registration failed at backend",
			zap.String("employee_id", req.EmployeeID),
			zap.String("platform", req.Platform),
			zap.Error(err))
		return &dto.RegisterDeviceResponse{Enabled: false, Reason: "registration failed"}, nil
	}

	device := &domain.DeviceToken{
		EmployeeID:   req.EmployeeID,
		Platform:     platform,
		Token:        req.Token,
		RegisteredAt: time.Now().UTC(),
	}
	if err := s.deviceRepo.Upsert(ctx, device); err != nil {
		// Registration already succeeded upstream; the next call just
		// repeats it instead of deduplicating.
		s.logger.Warn("Failed to cache device token", zap.Error(err))
	}

	s.metrics.IncrementDevicesRegistered()
	return &dto.RegisterDeviceResponse{Enabled: true}, nil
}

// Receive stores an incoming push event and fans it out to the employee's
// connected sessions. It reports whether any session received the event.
func (s *notificationServiceImpl) Receive(ctx context.Context, event *domain.PushEvent) (bool, error) {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return false, response.NewValidationError("Invalid push event data", err.Error())
	}

	notification := &domain.Notification{
		EmployeeID: event.EmployeeID,
		Title:      event.Notification.Title,
		Body:       event.Notification.Body,
		Data:       data,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Error("Failed to store push event", zap.Error(err))
		return false, response.NewAppError(response.ErrCodeInternal, "Failed to store push event", err.Error())
	}

	delivered := s.hub.Broadcast(event.EmployeeID, push.Message{
		Title: event.Notification.Title,
		Body:  event.Notification.Body,
		Data:  event.Data,
	})
	if delivered {
		if err := s.notificationRepo.MarkDelivered(ctx, notification.ID); err != nil {
			s.logger.Warn("Failed to mark push event delivered", zap.Error(err))
		}
	}
	return delivered, nil
}

// List returns stored push events for an employee, newest first
func (s *notificationServiceImpl) List(ctx context.Context, employeeID string, limit int) ([]*dto.NotificationResponse, error) {
	notifications, err := s.notificationRepo.FindByEmployee(ctx, employeeID, limit)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to list notifications", err.Error())
	}

	responses := make([]*dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		resp := &dto.NotificationResponse{
			ID:        n.ID,
			Title:     n.Title,
			Body:      n.Body,
			Delivered: n.Delivered,
			CreatedAt: n.CreatedAt,
		}
		if len(n.Data) > 0 {
			var payload map[string]interface{}
			if err := json.Unmarshal(n.Data, &payload); err == nil {
				resp.Data = payload
			}
		}
		responses = append(responses, resp)
	}
	return responses, nil
}
