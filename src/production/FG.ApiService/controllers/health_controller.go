package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	interfaces "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Store/Interfaces"
)

// HealthController handles health requests
type HealthController struct {
	store interfaces.SensorStore
}

// NewHealthController creates a new health controller
func NewHealthController(store interfaces.SensorStore) *HealthController {
	return &HealthController{store: store}
}

// RegisterRoutes registers the health routes with Gin
func (c *HealthController) RegisterRoutes(router *gin.Engine) {
	router.GET("/health/live", c.HealthLive)
	router.GET("/health/ready", c.HealthReady)
}

func (c *HealthController) HealthLive(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func (c *HealthController) HealthReady(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"records": c.store.Count(),
	})
}
