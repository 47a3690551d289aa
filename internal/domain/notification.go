package domain

import (
	"gorm.io/datatypes"
)

// PushEvent is the payload received from the CRM backend push webhook
type PushEvent struct {
	Notification PushContent            `json:"notification"`
	Data         map[string]interface{} `json:"data,omitempty"`
	EmployeeID   string                 `json:"employeeId"`
}

// PushContent is the user-visible part of a push event
type PushContent struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Notification is a stored push event awaiting or past delivery to a
// dashboard session. Data carries the opaque payload (url, resource ids)
// forwarded unchanged to the browser.
type Notification struct {
	BaseModel
	EmployeeID string         `gorm:"type:varchar(100);not null;index:idx_notifications_employee_id" json:"employeeId"`
	Title      string         `gorm:"type:varchar(255);not null" json:"title"`
	Body       string         `gorm:"type:text" json:"body"`
	Data       datatypes.JSON `gorm:"type:jsonb" json:"data,omitempty"`
	Delivered  bool           `gorm:"not null;default:false;index:idx_notifications_delivered" json:"delivered"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}
