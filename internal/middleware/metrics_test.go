package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/quick"
	"time"

	"github.com/gin-gonic/gin"

	"crm-admin-gateway/internal/metrics"
)

// Shared metrics instance for all tests to avoid duplicate registration
var testMetrics *metrics.Metrics

func init() {
	testMetrics = metrics.New()
}

func setupTestRouter(m *metrics.Metrics) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Metrics(m))
	return router
}

// For any HTTP request (excluding /metrics and /health), the counter should
// increment without interfering with the response
func TestProperty_HTTPRequestMetricsIncrement(t *testing.T) {
	property := func(statusCode uint16) bool {
		if statusCode < 200 || statusCode >= 600 {
			return true // Skip invalid status codes
		}

		router := setupTestRouter(testMetrics)

		endpoint := "/api/admin/stages/test"
		router.GET(endpoint, func(c *gin.Context) {
			c.Status(int(statusCode))
		})

		req1 := httptest.NewRequest("GET", endpoint, nil)
		w1 := httptest.NewRecorder()
		router.ServeHTTP(w1, req1)

		if w1.Code != int(statusCode) {
			t.Logf("First request failed: expected %d, got %d", statusCode, w1.Code)
			return false
		}

		req2 := httptest.NewRequest("GET", endpoint, nil)
		w2 := httptest.NewRecorder()
		router.ServeHTTP(w2, req2)

		if w2.Code != int(statusCode) {
			t.Logf("Second request failed: expected %d, got %d", statusCode, w2.Code)
			return false
		}

		return true
	}

	config := &quick.Config{
		MaxCount: 100,
	}

	if err := quick.Check(property, config); err != nil {
		t.Errorf("Property test failed: %v", err)
	}
}

// For any HTTP request, the middleware measures the full request time
func TestProperty_HTTPRequestDurationRecording(t *testing.T) {
	property := func(delayMs uint16) bool {
		if delayMs > 100 {
			return true // Skip long delays
		}

		router := setupTestRouter(testMetrics)

		endpoint := "/api/admin/fields/test-duration"
		delay := time.Duration(delayMs) * time.Millisecond
		router.GET(endpoint, func(c *gin.Context) {
			time.Sleep(delay)
			c.Status(http.StatusOK)
		})

		start := time.Now()
		req := httptest.NewRequest("GET", endpoint, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		actualDuration := time.Since(start)

		if w.Code != http.StatusOK {
			t.Logf("Request failed: expected 200, got %d", w.Code)
			return false
		}

		if actualDuration < delay {
			t.Logf("Request completed too quickly: actual=%v, expected_min=%v",
				actualDuration, delay)
			return false
		}

		return true
	}

	config := &quick.Config{
		MaxCount: 100,
	}

	if err := quick.Check(property, config); err != nil {
		t.Errorf("Property test failed: %v", err)
	}
}

func TestMetricsMiddleware_Integration(t *testing.T) {
	router := setupTestRouter(testMetrics)

	router.GET("/api/admin/fields/product", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.POST("/api/admin/fields/product", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	router.GET("/api/admin/deals/:dealId/timeline", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.POST("/api/admin/deals/:dealId/stages", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.DELETE("/api/admin/fields/product/:id", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	testCases := []struct {
		name       string
		method     string
		path       string
		statusCode int
	}{
		{"GET field definitions", "GET", "/api/admin/fields/product", http.StatusOK},
		{"POST field definition", "POST", "/api/admin/fields/product", http.StatusCreated},
		{"GET deal timeline", "GET", "/api/admin/deals/123/timeline", http.StatusOK},
		{"POST stage transition", "POST", "/api/admin/deals/456/stages", http.StatusOK},
		{"DELETE field definition", "DELETE", "/api/admin/fields/product/789", http.StatusNoContent},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
		})
	}
}

func TestMetricsMiddleware_ExcludedEndpoints(t *testing.T) {
	router := setupTestRouter(testMetrics)

	router.GET("/metrics", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/api/admin/metrics", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/api/admin/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	excludedPaths := []string{
		"/metrics",
		"/health",
		"/api/admin/metrics",
		"/api/admin/health",
	}

	for _, path := range excludedPaths {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest("GET", path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			// Excluded endpoints should still serve normally
			if w.Code != http.StatusOK {
				t.Errorf("Expected status 200, got %d", w.Code)
			}
		})
	}
}

func TestMetricsMiddleware_ErrorStatusCodes(t *testing.T) {
	router := setupTestRouter(testMetrics)

	router.GET("/api/admin/fields/unknown", func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})
	router.POST("/api/admin/deals/bad/stages", func(c *gin.Context) {
		c.Status(http.StatusBadGateway)
	})
	router.GET("/api/admin/sessions/me", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	testCases := []struct {
		name       string
		method     string
		path       string
		statusCode int
	}{
		{"400 Bad Request", "GET", "/api/admin/fields/unknown", http.StatusBadRequest},
		{"502 Bad Gateway", "POST", "/api/admin/deals/bad/stages", http.StatusBadGateway},
		{"404 Not Found", "GET", "/api/admin/sessions/me", http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
		})
	}
}
