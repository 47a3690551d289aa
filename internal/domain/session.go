package domain

import (
	"time"

	"github.com/google/uuid"

	"gorm.io/datatypes"
)

// Session is the locally persisted record of an authenticated dashboard user.
// The gateway does not issue tokens; it stores the backend-issued bearer token
// together with a snapshot of the user profile, and the user cache memoizes
// reads of this row.
type Session struct {
	BaseModel
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_sessions_user_id" json:"userId"`
	Token     string         `gorm:"type:text;not null" json:"-"`
	Profile   datatypes.JSON `gorm:"type:jsonb" json:"profile,omitempty"`
	ExpiresAt time.Time      `gorm:"type:timestamp;not null;index:idx_sessions_expires_at" json:"expiresAt"`
}

// TableName specifies the table name for Session
func (Session) TableName() string {
	return "sessions"
}

// Expired reports whether the session is past its expiry at the given time
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
