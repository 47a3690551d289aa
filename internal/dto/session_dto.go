package dto

import (
	"time"

	"github.com/google/uuid"
)

// LoginRequest hands a backend-issued bearer token to the gateway for
// session storage. The gateway does not issue tokens.
type LoginRequest struct {
	Token   string                 `json:"token" binding:"required"`
	Profile map[string]interface{} `json:"profile"`
}

// SessionResponse describes the stored session
type SessionResponse struct {
	UserID    uuid.UUID              `json:"userId"`
	ExpiresAt time.Time              `json:"expiresAt"`
	Profile   map[string]interface{} `json:"profile,omitempty"`
}
