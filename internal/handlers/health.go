package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthHandler reports process and database liveness.
type HealthHandler struct {
	db      *gorm.DB
	started time.Time
	version string
}

// NewHealthHandler builds a HealthHandler.
func NewHealthHandler(db *gorm.DB, version string) *HealthHandler {
	return &HealthHandler{db: db, started: time.Now(), version: version}
}

// Check handles GET /health.
func (h *HealthHandler) Check(c *gin.Context) {
	status := http.StatusOK
	dbStatus := "ok"

	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			status = http.StatusServiceUnavailable
			dbStatus = "unavailable"
		}
	}

	c.JSON(status, gin.H{
		"status":   dbStatus,
		"version":  h.version,
		"uptime_s": int64(time.Since(h.started).Seconds()),
	})
}
