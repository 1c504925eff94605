package handlers

import (
	"net/http"
	"time"

	"campus-intake/internal/config"
	"campus-intake/internal/infrastructure/database"
	interfaces "campus-intake/internal/interfaces/infrastructure"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	db    *gorm.DB
	cache interfaces.CacheService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *gorm.DB, cache interfaces.CacheService) *HealthHandler {
	return &HealthHandler{
		db:    db,
		cache: cache,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	cfg := config.Get()

	status := "healthy"
	services := make(map[string]string)

	if h.db != nil {
		if err := database.HealthCheck(h.db); err != nil {
			services["database"] = "unhealthy: " + err.Error()
			status = "degraded"
		} else {
			services["database"] = "healthy"
		}
	}

	if h.cache != nil {
		if err := h.cache.Health(c.Request.Context()); err != nil {
			services["cache"] = "unhealthy: " + err.Error()
			status = "degraded"
		} else {
			services["cache"] = "healthy"
		}
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Version:   cfg.App.Version,
		Services:  services,
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, response)
}

// ReadinessCheck handles GET /ready
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ready := true
	if h.db != nil && database.HealthCheck(h.db) != nil {
		ready = false
	}

	response := map[string]interface{}{
		"ready":     ready,
		"timestamp": time.Now(),
	}

	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, response)
}

// LivenessCheck handles GET /live
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	response := map[string]interface{}{
		"alive":     true,
		"timestamp": time.Now(),
	}

	c.JSON(http.StatusOK, response)
}
