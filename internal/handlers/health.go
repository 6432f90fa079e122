package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/cache"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/database"
)

// Health reports liveness plus dependency state. Degraded redis does
// not fail the check - the API runs without its cache.
// GET /health
func (h *Handlers) Health(c *gin.Context) {
	status := http.StatusOK
	overall := "ok"
	dbState := "ok"
	if err := database.Health(); err != nil {
		dbState = "down"
		overall = "degraded"
		status = http.StatusServiceUnavailable
	}

	redisState := "disabled"
	if rc := cache.GetRedisClient(); rc != nil {
		redisState = "ok"
		if err := rc.Ping(c.Request.Context()); err != nil {
			redisState = "down"
		}
	}

	c.JSON(status, gin.H{
		"status":   overall,
		"database": dbState,
		"redis":    redisState,
	})
}
