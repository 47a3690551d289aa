package client

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"crm-admin-gateway/internal/domain"
	"crm-admin-gateway/internal/metrics"
)

// DeviceRegistration is the tuple the backend persists for push delivery
type DeviceRegistration struct {
	EmployeeID string          `json:"employeeId"`
	Platform   domain.Platform `json:"platform"`
	Token      string          `json:"token"`
}

// DeviceClient is the CRM backend adapter for push device registration
type DeviceClient interface {
	RegisterDevice(ctx context.Context, token string, registration DeviceRegistration) error
}

// deviceClient implements DeviceClient
type deviceClient struct {
	apiClient
}

// NewDeviceClient creates a new device registration API client
func NewDeviceClient(baseURL string, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) DeviceClient {
	return &deviceClient{apiClient: newAPIClient(baseURL, timeout, logger, m)}
}

// RegisterDevice persists the (employeeId, platform, token) tuple to the backend
func (c *deviceClient) RegisterDevice(ctx context.Context, token string, registration DeviceRegistration) error {
	_, err := c.do(ctx, http.MethodPost, "/notifications/devices", token, registration)
	return err
}
