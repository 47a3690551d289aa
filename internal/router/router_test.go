package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"crm-admin-gateway/internal/cache"
	"crm-admin-gateway/internal/client"
	"crm-admin-gateway/internal/database"
	"crm-admin-gateway/internal/metrics"
	"crm-admin-gateway/internal/push"
	"crm-admin-gateway/internal/registry"
	"crm-admin-gateway/internal/repository"
	"crm-admin-gateway/internal/service"
)

// setupTestRouter wires the full stack over an in-memory store and a stub
// backend that answers every request with an empty list
func setupTestRouter(t *testing.T, basePath string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	t.Cleanup(backend.Close)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	logger := zap.NewNop()
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), logger)

	fieldClient := client.NewFieldClient(backend.URL, 2*time.Second, logger, m)
	stageClient := client.NewStageClient(backend.URL, 2*time.Second, logger, m)
	dealClient := client.NewDealClient(backend.URL, 2*time.Second, logger, m)
	deviceClient := client.NewDeviceClient(backend.URL, 2*time.Second, logger, m)

	sessionRepo := repository.NewSessionRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	stageRegistry := registry.NewStageRegistry(stageClient, logger, m)
	userCache := cache.NewUserCache(sessionRepo, time.Minute, logger, m)
	hub := push.NewHub(logger, m)

	cfg := Config{
		DB:                  db,
		Logger:              logger,
		Metrics:             m,
		JWTSecret:           "test-secret",
		BasePath:            basePath,
		InternalAPIKey:      "test-internal-key",
		FieldService:        service.NewFieldService(fieldClient),
		StageService:        service.NewStageService(stageRegistry, dealClient, logger, m),
		NotificationService: service.NewNotificationService(deviceClient, deviceRepo, notificationRepo, hub, logger, m),
		SessionService:      service.NewSessionService(sessionRepo, userCache, "test-secret", logger),
		Hub:                 hub,
	}

	return Setup(cfg)
}

func TestRouter_HealthEndpoints(t *testing.T) {
	r := setupTestRouter(t, "/api/admin")

	paths := []string{"/health", "/ready", "/api/admin/health", "/api/admin/ready"}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	r := setupTestRouter(t, "/api/admin")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_ProtectedRoutesRequireAuth(t *testing.T) {
	r := setupTestRouter(t, "/api/admin")

	testCases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/admin/fields/product"},
		{http.MethodPost, "/api/admin/fields/deal"},
		{http.MethodGet, "/api/admin/stages/departments"},
		{http.MethodGet, "/api/admin/stages?department=sales"},
		{http.MethodGet, "/api/admin/deals/d-1/pipeline?department=sales"},
		{http.MethodPost, "/api/admin/deals/d-1/stages"},
		{http.MethodPost, "/api/admin/notifications/devices"},
		{http.MethodGet, "/api/admin/notifications?employeeId=e-1"},
		{http.MethodDelete, "/api/admin/sessions"},
		{http.MethodGet, "/api/admin/sessions/me"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRouter_InvalidBearerTokenRejected(t *testing.T) {
	r := setupTestRouter(t, "/api/admin")

	req := httptest.NewRequest(http.MethodGet, "/api/admin/fields/product", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestRouter_WebhookRequiresInternalKey(t *testing.T) {
	r := setupTestRouter(t, "/api/admin")

	body := strings.NewReader(`{"notification":{"title":"t","body":"b"},"employeeId":"e-1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/internal/notifications/events", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_WebhookAcceptsValidKey(t *testing.T) {
	r := setupTestRouter(t, "/api/admin")

	body := strings.NewReader(`{"notification":{"title":"t","body":"b"},"employeeId":"e-1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/internal/notifications/events", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-API-Key", "test-internal-key")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"delivered":false`)
}

func TestRouter_WebsocketHandshakeNeedsEmployeeID(t *testing.T) {
	r := setupTestRouter(t, "/api/admin")

	req := httptest.NewRequest(http.MethodGet, "/api/admin/notifications/ws", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	r := setupTestRouter(t, "/api/admin")

	req := httptest.NewRequest(http.MethodGet, "/api/admin/does-not-exist", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
