package dto

import (
	"time"

	"github.com/google/uuid"
)

// RegisterDeviceRequest represents a push device registration from the dashboard
type RegisterDeviceRequest struct {
	EmployeeID string `json:"employeeId" binding:"required,max=100"`
	Platform   string `json:"platform" binding:"required,max=20"`
	Token      string `json:"token" binding:"required"`
	// Permission reports the outcome of the browser permission prompt;
	// "denied" disables notifications without an error
	Permission string `json:"permission" binding:"omitempty,oneof=granted denied"`
}

// RegisterDeviceResponse reports whether push delivery is enabled after the
// registration attempt. Registration failures degrade to enabled=false
// rather than erroring.
type RegisterDeviceResponse struct {
	Enabled bool   `json:"enabled"`
	Reason  string `json:"reason,omitempty"`
}

// NotificationResponse is one stored push event
type NotificationResponse struct {
	ID        uuid.UUID              `json:"id"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Delivered bool                   `json:"delivered"`
	CreatedAt time.Time              `json:"createdAt"`
}
