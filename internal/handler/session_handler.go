package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crm-admin-gateway/internal/dto"
	"crm-admin-gateway/internal/response"
	"crm-admin-gateway/internal/service"
)

type SessionHandler struct {
	sessionService service.SessionService
}

func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
	}
}

// Login godoc
// @Summary      Store a dashboard session
// @Description  Records a backend-issued bearer token for the dashboard user and resets the cached user snapshot
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "Backend-issued token and optional profile"
// @Success      201 {object} response.SuccessResponse{data=dto.SessionResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid request"
// @Failure      401 {object} response.ErrorResponse "Invalid token"
// @Router       /sessions [post]
func (h *SessionHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	session, err := h.sessionService.Login(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, session)
}

// Logout godoc
// @Summary      Remove the stored session
// @Description  Deletes the user's stored session and drops the cached snapshot
// @Tags         sessions
// @Produce      json
// @Success      200 {object} response.SuccessResponse
// @Failure      401 {object} response.ErrorResponse "Not authenticated"
// @Security     BearerAuth
// @Router       /sessions [delete]
func (h *SessionHandler) Logout(c *gin.Context) {
	auth, ok := ExtractAuthData(c)
	if !ok {
		return
	}

	if err := h.sessionService.Logout(c.Request.Context(), auth.UserID); err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, gin.H{"loggedOut": true})
}

// CurrentUser godoc
// @Summary      Current session
// @Description  Returns the authenticated user's stored session via the short-TTL user cache
// @Tags         sessions
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=dto.SessionResponse}
// @Failure      404 {object} response.ErrorResponse "No active session"
// @Security     BearerAuth
// @Router       /sessions/me [get]
func (h *SessionHandler) CurrentUser(c *gin.Context) {
	auth, ok := ExtractAuthData(c)
	if !ok {
		return
	}

	session, err := h.sessionService.CurrentUser(c.Request.Context(), auth.UserID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, session)
}
