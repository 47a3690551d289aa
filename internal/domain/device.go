package domain

import "time"

// Platform identifies the device platform of a push registration
type Platform string

// Platform constants
const (
	PlatformWeb     Platform = "WEB"
	PlatformAndroid Platform = "ANDROID"
	PlatformIOS     Platform = "IOS"
)

// IsValidPlatform validates if the platform is one of the supported platforms
func IsValidPlatform(platform Platform) bool {
	switch platform {
	case PlatformWeb, PlatformAndroid, PlatformIOS:
		return true
	default:
		return false
	}
}

// DeviceToken records a push registration relayed to the CRM backend.
// The local row doubles as the session cache of the issued token so repeated
// registrations with an unchanged token skip the backend call.
type DeviceToken struct {
	BaseModel
	EmployeeID   string    `gorm:"type:varchar(100);not null;uniqueIndex:uq_device_tokens_employee_platform,priority:1" json:"employeeId"`
	Platform     Platform  `gorm:"type:varchar(20);not null;uniqueIndex:uq_device_tokens_employee_platform,priority:2" json:"platform"`
	Token        string    `gorm:"type:text;not null" json:"token"`
	RegisteredAt time.Time `gorm:"type:timestamp;not null" json:"registeredAt"`
}

// TableName specifies the table name for DeviceToken
func (DeviceToken) TableName() string {
	return "device_tokens"
}
