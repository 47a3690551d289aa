package response

import (
	"github.com/gin-gonic/gin"
)

// Error codes used across the service
const (
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeAlreadyExists     = "ALREADY_EXISTS"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeUnknownEntityType = "UNKNOWN_ENTITY_TYPE"
	ErrCodeRemote            = "REMOTE_ERROR"
	ErrCodeNotSupported      = "NOT_SUPPORTED"
	ErrCodePermissionDenied  = "PERMISSION_DENIED"
)

// AppError is the application error type carried from service layer to handlers
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	// Status carries the upstream HTTP status for REMOTE_ERROR
	Status int `json:"status,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Code + ": " + e.Message + " (" + e.Details + ")"
	}
	return e.Code + ": " + e.Message
}

// NewAppError creates a new AppError with the given code, message and details
func NewAppError(code, message, details string) *AppError {
	return &AppError{Code: code, Message: message, Details: details}
}

// NewValidationError creates a validation error
func NewValidationError(message, details string) *AppError {
	return NewAppError(ErrCodeValidation, message, details)
}

// NewNotFoundError creates a not-found error
func NewNotFoundError(message, details string) *AppError {
	return NewAppError(ErrCodeNotFound, message, details)
}

// NewUnknownEntityTypeError creates an error for an unsupported entity type key
func NewUnknownEntityTypeError(entityType string) *AppError {
	return NewAppError(ErrCodeUnknownEntityType, "Unknown entity type: "+entityType, "")
}

// NewNotSupportedError creates an error for an unsupported capability
func NewNotSupportedError(message string) *AppError {
	return NewAppError(ErrCodeNotSupported, message, "")
}

// NewPermissionDeniedError creates an error for a denied permission
func NewPermissionDeniedError(message string) *AppError {
	return NewAppError(ErrCodePermissionDenied, message, "")
}

// NewRemoteError creates an error carrying the upstream status and message
func NewRemoteError(status int, message string) *AppError {
	return &AppError{Code: ErrCodeRemote, Message: message, Status: status}
}

// SuccessResponse is the success envelope
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the error envelope
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// ErrorBody holds the error code and message of an ErrorResponse
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SendSuccess writes a success envelope with the given status code
func SendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Success: true,
		Data:    data,
	})
}

// SendError writes an error envelope with the given status code
func SendError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, ErrorResponse{
		Success: false,
		Error: ErrorBody{
			Code:    code,
			Message: message,
		},
	})
}
