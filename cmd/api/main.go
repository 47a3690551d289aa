// @title           CRM Admin Gateway API
// @version         1.0
// @description     Backend-for-frontend gateway for the CRM admin dashboard

// @contact.name   API Support
// @contact.url    http://www.crm-admin-gateway.io/support
// @contact.email  support@crm-admin-gateway.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8010
// @BasePath  /api/admin

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "crm-admin-gateway/docs" // Swagger docs import

	"crm-admin-gateway/internal/cache"
	"crm-admin-gateway/internal/client"
	"crm-admin-gateway/internal/config"
	"crm-admin-gateway/internal/database"
	"crm-admin-gateway/internal/job"
	"crm-admin-gateway/internal/metrics"
	"crm-admin-gateway/internal/push"
	"crm-admin-gateway/internal/registry"
	"crm-admin-gateway/internal/repository"
	"crm-admin-gateway/internal/router"
	"crm-admin-gateway/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Set Gin mode
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting CRM Admin Gateway",
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("base_path", cfg.Server.BasePath),
		zap.String("crm_api_url", cfg.CRMAPI.BaseURL),
	)

	// Initialize local store
	db, err := database.New(database.Config{
		DSN:             cfg.Database.DSN,
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal("Failed to open local store", zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.Info("Local store ready")

	// Initialize metrics
	m := metrics.NewWithLogger(logger)
	database.RegisterMetricsCallbacks(db, m)

	// Redis is optional; the user cache degrades to the in-process memo
	redisClient, err := database.NewRedis(cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis unavailable, user cache runs without the shared layer", zap.Error(err))
		redisClient = nil
	}

	// CRM backend clients
	fieldClient := client.NewFieldClient(cfg.CRMAPI.BaseURL, cfg.CRMAPI.Timeout, logger, m)
	stageClient := client.NewStageClient(cfg.CRMAPI.BaseURL, cfg.CRMAPI.Timeout, logger, m)
	dealClient := client.NewDealClient(cfg.CRMAPI.BaseURL, cfg.CRMAPI.Timeout, logger, m)
	deviceClient := client.NewDeviceClient(cfg.CRMAPI.BaseURL, cfg.CRMAPI.Timeout, logger, m)

	// Repositories over the local store
	sessionRepo := repository.NewSessionRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Stage registry and user cache
	stageRegistry := registry.NewStageRegistry(stageClient, logger, m)
	cacheOpts := []cache.Option{}
	if redisClient != nil {
		cacheOpts = append(cacheOpts, cache.WithRedis(redisClient))
	}
	userCache := cache.NewUserCache(sessionRepo, cfg.SessionCache.TTL, logger, m, cacheOpts...)

	// Push hub
	hub := push.NewHub(logger, m)

	// Services
	fieldService := service.NewFieldService(fieldClient)
	stageService := service.NewStageService(stageRegistry, dealClient, logger, m)
	notificationService := service.NewNotificationService(deviceClient, deviceRepo, notificationRepo, hub, logger, m)
	sessionService := service.NewSessionService(sessionRepo, userCache, cfg.JWT.Secret, logger)

	// Cleanup sweep every hour
	cleanupJob := job.NewCleanupJob(sessionRepo, deviceRepo, notificationRepo, logger)
	scheduler := cron.New()
	if _, err := scheduler.AddJob("@every 1h", cleanupJob); err != nil {
		logger.Error("Failed to schedule cleanup job", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router with all dependencies
	r := router.Setup(router.Config{
		DB:                  db,
		Redis:               redisClient,
		Logger:              logger,
		Metrics:             m,
		JWTSecret:           cfg.JWT.Secret,
		BasePath:            cfg.Server.BasePath,
		InternalAPIKey:      cfg.Push.InternalAPIKey,
		FieldService:        fieldService,
		StageService:        stageService,
		NotificationService: notificationService,
		SessionService:      sessionService,
		Hub:                 hub,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("CRM Admin Gateway started successfully",
			zap.String("address", srv.Addr),
			zap.String("swagger", fmt.Sprintf("http://localhost:%s/swagger/index.html", cfg.Server.Port)),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := database.Close(db); err != nil {
		logger.Warn("Failed to close local store", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// initLogger initializes the zap logger with the specified level
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
