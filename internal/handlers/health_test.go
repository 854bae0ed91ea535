package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/housingdash/api/internal/logger"
	"github.com/stwalsh4118/housingdash/api/internal/middleware"
)

// MockPinger is a mock database connection.
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockReadiness is a mock county data check.
type MockReadiness struct {
	mock.Mock
}

func (m *MockReadiness) Ready(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// setupTestRouter creates a test Gin router with the request-scoped middleware.
func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Nop()))
	return router
}

func TestHealthHandler_Health(t *testing.T) {
	handler := NewHealthHandler(nil, nil, "test")

	router := setupTestRouter()
	router.GET("/health", handler.Health)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, HealthResponse{Status: "healthy"}, response)
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name           string
		pingErr        error
		dataErr        error
		withDB         bool
		expectedStatus int
		expectedBody   ReadyResponse
	}{
		{
			name:           "ready without a database",
			expectedStatus: http.StatusOK,
			expectedBody:   ReadyResponse{Status: "ready", Database: StatusNotConfigured, Data: StatusLoaded},
		},
		{
			name:           "ready with a connected database",
			withDB:         true,
			expectedStatus: http.StatusOK,
			expectedBody:   ReadyResponse{Status: "ready", Database: StatusConnected, Data: StatusLoaded},
		},
		{
			name:           "database ping fails",
			withDB:         true,
			pingErr:        errors.New("connection refused"),
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   ReadyResponse{Status: "not_ready", Database: StatusDisconnected, Data: StatusLoaded},
		},
		{
			name:           "county data fails to load",
			dataErr:        errors.New("open transactions: no such file"),
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   ReadyResponse{Status: "not_ready", Database: StatusNotConfigured, Data: StatusUnavailable},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := new(MockReadiness)
			data.On("Ready", mock.Anything).Return(tt.dataErr)

			var db Pinger
			pinger := new(MockPinger)
			if tt.withDB {
				pinger.On("Ping", mock.Anything).Return(tt.pingErr)
				db = pinger
			}

			handler := NewHealthHandler(db, data, "test")
			router := setupTestRouter()
			router.GET("/health/ready", handler.Ready)

			req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response ReadyResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.expectedBody, response)

			data.AssertExpectations(t)
			pinger.AssertExpectations(t)
		})
	}
}

func TestHealthHandler_Ready_DeadlineSet(t *testing.T) {
	data := new(MockReadiness)
	data.On("Ready", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	})).Return(nil)

	handler := NewHealthHandler(nil, data, "test")
	router := setupTestRouter()
	router.GET("/health/ready", handler.Ready)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	data.AssertExpectations(t)
}

func TestHealthHandler_Info(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		startTime time.Time
		uptime    string
	}{
		{
			name:      "returns API info with development environment",
			env:       "development",
			startTime: time.Now().Add(-2 * time.Hour),
			uptime:    "2h 0m 0s",
		},
		{
			name:      "returns API info with production environment",
			env:       "production",
			startTime: time.Now().Add(-24 * time.Hour),
			uptime:    "1d 0h 0m 0s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &HealthHandler{
				startTime: tt.startTime,
				env:       tt.env,
			}

			router := setupTestRouter()
			router.GET("/api/v1/info", handler.Info)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/info", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)

			var response InfoResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, APIVersion, response.Version)
			assert.Equal(t, tt.env, response.Environment)
			assert.Equal(t, tt.uptime, response.Uptime)
		})
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"formats seconds only", 45 * time.Second, "0h 0m 45s"},
		{"formats minutes and seconds", 5*time.Minute + 30*time.Second, "0h 5m 30s"},
		{"formats hours, minutes and seconds", 2*time.Hour + 15*time.Minute + 45*time.Second, "2h 15m 45s"},
		{"formats days", 3*24*time.Hour + 5*time.Hour + 30*time.Minute + 15*time.Second, "3d 5h 30m 15s"},
		{"formats zero duration", 0, "0h 0m 0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatUptime(tt.duration))
		})
	}
}

func TestReadyResponse_JSON(t *testing.T) {
	data, err := json.Marshal(ReadyResponse{
		Status:   "not_ready",
		Database: StatusDisconnected,
		Data:     StatusLoaded,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"not_ready","database":"disconnected","data":"loaded"}`, string(data))
}

func BenchmarkFormatUptime(b *testing.B) {
	duration := 3*24*time.Hour + 5*time.Hour + 30*time.Minute + 15*time.Second

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = formatUptime(duration)
	}
}

func ExampleHealthHandler_Health() {
	handler := NewHealthHandler(nil, nil, "development")

	router := gin.New()
	router.GET("/health", handler.Health)

	fmt.Println("Health endpoint registered at /health")
	// Output: Health endpoint registered at /health
}
