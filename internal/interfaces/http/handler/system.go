package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/erp/carrier-transport/internal/infrastructure/event"
	"github.com/gin-gonic/gin"
)

// SystemHandler serves health and service information
type SystemHandler struct {
	BaseHandler
	name        string
	version     string
	carrierName string
	startTime   time.Time
	metrics     *event.IdempotencyMetrics
}

// NewSystemHandler creates a new SystemHandler.
// metrics may be nil when duplicate suppression is off.
func NewSystemHandler(name, version, carrierName string, metrics *event.IdempotencyMetrics) *SystemHandler {
	return &SystemHandler{
		name:        name,
		version:     version,
		carrierName: carrierName,
		startTime:   time.Now(),
		metrics:     metrics,
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name        string                  `json:"name"`
	Version     string                  `json:"version"`
	GoVersion   string                  `json:"go_version"`
	Uptime      string                  `json:"uptime"`
	Carrier     string                  `json:"carrier"`
	Idempotency *event.IdempotencyStats `json:"idempotency,omitempty"`
}

// RegisterRoutes registers the system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/system/info", h.GetSystemInfo)
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetSystemInfo handles GET /system/info
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Carrier:   h.carrierName,
	}
	if h.metrics != nil {
		stats := h.metrics.Stats()
		info.Idempotency = &stats
	}
	h.Success(c, info)
}
