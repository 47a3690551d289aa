package router

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	commonmw "github.com/OrangesCloud/wealist-advanced-go-pkg/middleware"

	"crm-admin-gateway/internal/handler"
	"crm-admin-gateway/internal/metrics"
	"crm-admin-gateway/internal/middleware"
	"crm-admin-gateway/internal/push"
	"crm-admin-gateway/internal/service"
)

// Config holds the dependencies the router wires together
type Config struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	JWTSecret      string
	BasePath       string
	InternalAPIKey string

	FieldService        service.FieldService
	StageService        service.StageService
	NotificationService service.NotificationService
	SessionService      service.SessionService
	Hub                 *push.Hub
}

// Setup builds the gin engine with all routes and middleware
func Setup(cfg Config) *gin.Engine {
	r := gin.New()

	// Middleware (using common package)
	r.Use(commonmw.Recovery(cfg.Logger))
	r.Use(commonmw.Logger(cfg.Logger))
	r.Use(commonmw.DefaultCORS())
	r.Use(middleware.Metrics(cfg.Metrics))

	// Initialize handlers
	fieldHandler := handler.NewFieldHandler(cfg.FieldService)
	stageHandler := handler.NewStageHandler(cfg.StageService)
	notificationHandler := handler.NewNotificationHandler(cfg.NotificationService, cfg.Hub, cfg.InternalAPIKey, cfg.Logger)
	sessionHandler := handler.NewSessionHandler(cfg.SessionService)
	healthHandler := handler.NewHealthHandler(cfg.DB, cfg.Redis)

	// Health endpoints (no auth)
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes with base path
	api := r.Group(cfg.BasePath)
	{
		// Health under base path
		api.GET("/health", healthHandler.Health)
		api.GET("/ready", healthHandler.Ready)

		// Websocket handshake and the backend webhook carry their own checks
		api.GET("/notifications/ws", notificationHandler.Connect)
		api.POST("/internal/notifications/events", notificationHandler.ReceiveEvent)

		// Session intake happens before a stored session exists
		api.POST("/sessions", sessionHandler.Login)

		// Authenticated routes
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Session routes
			authenticated.DELETE("/sessions", sessionHandler.Logout)
			authenticated.GET("/sessions/me", sessionHandler.CurrentUser)

			// Field definition routes
			authenticated.GET("/fields/:entityType", fieldHandler.GetDefinitions)
			authenticated.POST("/fields/:entityType", fieldHandler.CreateDefinition)
			authenticated.PATCH("/fields/:entityType/:id", fieldHandler.UpdateDefinition)
			authenticated.DELETE("/fields/:entityType/:id", fieldHandler.DeleteDefinition)

			// Record field value routes
			authenticated.GET("/records/:entityType/:recordId/fields", fieldHandler.GetValues)
			authenticated.PUT("/records/:entityType/:recordId/fields", fieldHandler.UpsertValue)
			authenticated.GET("/records/:entityType/:recordId/form", fieldHandler.GetForm)

			// Stage routes
			authenticated.GET("/stages/departments", stageHandler.GetDepartments)
			authenticated.GET("/stages", stageHandler.GetStages)

			// Deal pipeline routes
			authenticated.GET("/deals/:dealId/pipeline", stageHandler.GetPipeline)
			authenticated.POST("/deals/:dealId/stages", stageHandler.RequestTransition)
			authenticated.GET("/deals/:dealId/timeline", stageHandler.GetTimeline)

			// Notification routes
			authenticated.POST("/notifications/devices", notificationHandler.RegisterDevice)
			authenticated.GET("/notifications", notificationHandler.ListNotifications)
		}
	}

	return r
}
