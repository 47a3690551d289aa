package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"crm-admin-gateway/internal/domain"
	"crm-admin-gateway/internal/dto"
	"crm-admin-gateway/internal/push"
	"crm-admin-gateway/internal/response"
	"crm-admin-gateway/internal/service"
)

// upgrader accepts any origin; the gateway sits behind the dashboard's own
// origin checks
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type NotificationHandler struct {
	notificationService service.NotificationService
	hub                 *push.Hub
	internalAPIKey      string
	logger              *zap.Logger
}

func NewNotificationHandler(notificationService service.NotificationService, hub *push.Hub, internalAPIKey string, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		hub:                 hub,
		internalAPIKey:      internalAPIKey,
		logger:              logger,
	}
}

// RegisterDevice godoc
// @Summary      Register a push device
// @Description  Relays a push registration to the backend; any failure answers enabled=false instead of an error
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterDeviceRequest true "Device registration"
// @Success      200 {object} response.SuccessResponse{data=dto.RegisterDeviceResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid request"
// @Security     BearerAuth
// @Router       /notifications/devices [post]
func (h *NotificationHandler) RegisterDevice(c *gin.Context) {
	auth, ok := ExtractAuthData(c)
	if !ok {
		return
	}

	var req dto.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	result, err := h.notificationService.RegisterDevice(c.Request.Context(), auth.Token, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, result)
}

// ListNotifications godoc
// @Summary      List stored push events
// @Description  Returns stored push events for an employee, newest first
// @Tags         notifications
// @Produce      json
// @Param        employeeId query string true "Employee ID"
// @Param        limit query int false "Maximum number of events" default(50)
// @Success      200 {object} response.SuccessResponse{data=[]dto.NotificationResponse}
// @Failure      400 {object} response.ErrorResponse "Missing employeeId"
// @Security     BearerAuth
// @Router       /notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	if _, ok := ExtractAuthData(c); !ok {
		return
	}

	employeeID := c.Query("employeeId")
	if employeeID == "" {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "employeeId query parameter is required")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid limit")
		return
	}

	notifications, svcErr := h.notificationService.List(c.Request.Context(), employeeID, limit)
	if svcErr != nil {
		handleServiceError(c, svcErr)
		return
	}

	response.SendSuccess(c, http.StatusOK, notifications)
}

// Connect godoc
// @Summary      Foreground push delivery channel
// @Description  Upgrades to a websocket and streams push events for the employee while the dashboard tab is open
// @Tags         notifications
// @Param        employeeId query string true "Employee ID"
// @Success      101 {string} string "Switching Protocols"
// @Failure      400 {object} response.ErrorResponse "Missing employeeId"
// @Router       /notifications/ws [get]
func (h *NotificationHandler) Connect(c *gin.Context) {
	employeeID := c.Query("employeeId")
	if employeeID == "" {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "employeeId query parameter is required")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	// Blocks until the connection drops
	h.hub.Attach(employeeID, conn)
}

// ReceiveEvent godoc
// @Summary      Backend push webhook
// @Description  Accepts a push event from the CRM backend, stores it and fans it out to connected sessions
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Param        X-Internal-API-Key header string true "Internal API key"
// @Param        request body domain.PushEvent true "Push event"
// @Success      200 {object} response.SuccessResponse
// @Failure      400 {object} response.ErrorResponse "Invalid event"
// @Failure      401 {object} response.ErrorResponse "Bad API key"
// @Router       /internal/notifications/events [post]
func (h *NotificationHandler) ReceiveEvent(c *gin.Context) {
	if h.internalAPIKey == "" || c.GetHeader("X-Internal-API-Key") != h.internalAPIKey {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid internal API key")
		return
	}

	var event domain.PushEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid event body")
		return
	}
	if event.EmployeeID == "" {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "employeeId is required")
		return
	}

	delivered, err := h.notificationService.Receive(c.Request.Context(), &event)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, gin.H{"delivered": delivered})
}
