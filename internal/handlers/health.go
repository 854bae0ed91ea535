package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/housingdash/api/internal/middleware"
)

const (
	// APIVersion is the current version of the API
	APIVersion = "0.1.0"
	// HealthCheckTimeout bounds the readiness checks.
	HealthCheckTimeout = 5 * time.Second
)

// Readiness states.
const (
	StatusConnected     = "connected"
	StatusDisconnected  = "disconnected"
	StatusNotConfigured = "not_configured"
	StatusLoaded        = "loaded"
	StatusUnavailable   = "unavailable"
)

// Pinger checks a backing connection. *database.Database satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadinessChecker reports whether every county's data can be served.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// HealthHandler handles health check and readiness endpoints.
type HealthHandler struct {
	db        Pinger
	data      ReadinessChecker
	startTime time.Time
	env       string
}

// NewHealthHandler creates a new HealthHandler instance.
// db may be nil when tract geometry is read from files.
func NewHealthHandler(db Pinger, data ReadinessChecker, env string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		data:      data,
		startTime: time.Now(),
		env:       env,
	}
}

// HealthResponse represents the basic health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Data     string `json:"data"`
}

// InfoResponse represents the API information response.
type InfoResponse struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Uptime      string `json:"uptime"`
}

// Health handles GET /health endpoint.
// It does not check any dependencies and is used for liveness checks.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
	})
}

// Ready handles GET /health/ready endpoint.
// Returns 200 when every county's transactions and geometry load and, if
// configured, the database answers a ping. Returns 503 otherwise.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), HealthCheckTimeout)
	defer cancel()

	log := middleware.GetLogger(c)
	resp := ReadyResponse{
		Status:   "ready",
		Database: StatusNotConfigured,
		Data:     StatusLoaded,
	}

	if h.db != nil {
		resp.Database = StatusConnected
		if err := h.db.Ping(ctx); err != nil {
			if log != nil {
				log.Error("Database health check failed", err, map[string]interface{}{
					"timeout": HealthCheckTimeout.String(),
				})
			}
			resp.Database = StatusDisconnected
			resp.Status = "not_ready"
		}
	}

	if h.data != nil {
		if err := h.data.Ready(ctx); err != nil {
			if log != nil {
				log.Error("County data check failed", err, nil)
			}
			resp.Data = StatusUnavailable
			resp.Status = "not_ready"
		}
	}

	status := http.StatusOK
	if resp.Status != "ready" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

// Info handles GET /api/v1/info endpoint.
// Returns API metadata including version, environment, and uptime.
func (h *HealthHandler) Info(c *gin.Context) {
	uptime := time.Since(h.startTime)

	c.JSON(http.StatusOK, InfoResponse{
		Version:     APIVersion,
		Environment: h.env,
		Uptime:      formatUptime(uptime),
	})
}

// formatUptime formats a duration into a human-readable string.
func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
