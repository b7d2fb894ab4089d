package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	logger "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Logger"
	interfaces "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Store/Interfaces"
)

// AnalyticsController handles range filters and statistical analysis
type AnalyticsController struct {
	store  interfaces.SensorStore
	logger *logger.Logger
}

// NewAnalyticsController creates a new analytics controller
func NewAnalyticsController(store interfaces.SensorStore, logger *logger.Logger) *AnalyticsController {
	return &AnalyticsController{
		store:  store,
		logger: logger,
	}
}

// RegisterRoutes registers the analytics routes with Gin
func (c *AnalyticsController) RegisterRoutes(router *gin.Engine) {
	router.GET("/data/distance/:min_dist/:max_dist", c.GetDataByDistance)
	router.GET("/data/temperature/:min_temp/:max_temp", c.GetDataByTemperature)
	router.GET("/stats", c.GetStatistics)
}

// GetDataByDistance returns readings within a distance range in centimeters
func (c *AnalyticsController) GetDataByDistance(ctx *gin.Context) {
	minDist, err1 := strconv.ParseFloat(ctx.Param("min_dist"), 64)
	maxDist, err2 := strconv.ParseFloat(ctx.Param("max_dist"), 64)
	if err1 != nil || err2 != nil {
		respondError(ctx, http.StatusBadRequest, codeBadRequest, "Invalid distance range parameters")
		return
	}

	result, err := c.store.FilterByDistance(minDist, maxDist)
	if err != nil {
		if errors.Is(err, interfaces.ErrInvalidRange) {
			respondError(ctx, http.StatusBadRequest, codeBadRequest, "Invalid distance range parameters")
			return
		}
		respondInternalError(ctx)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetDataByTemperature returns readings within a temperature range in Celsius
func (c *AnalyticsController) GetDataByTemperature(ctx *gin.Context) {
	minTemp, err1 := strconv.ParseFloat(ctx.Param("min_temp"), 64)
	maxTemp, err2 := strconv.ParseFloat(ctx.Param("max_temp"), 64)
	if err1 != nil || err2 != nil {
		respondError(ctx, http.StatusBadRequest, codeBadRequest, "Invalid temperature range parameters")
		return
	}

	result, err := c.store.FilterByTemperature(minTemp, maxTemp)
	if err != nil {
		if errors.Is(err, interfaces.ErrInvalidRange) {
			respondError(ctx, http.StatusBadRequest, codeBadRequest, "Maximum temperature must be greater than minimum")
			return
		}
		respondInternalError(ctx)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetStatistics returns the aggregate analysis of all sensor data
func (c *AnalyticsController) GetStatistics(ctx *gin.Context) {
	report, err := c.store.Statistics()
	if err != nil {
		if errors.Is(err, interfaces.ErrNoData) {
			respondError(ctx, http.StatusNotFound, codeNotFound, "No data available for analysis")
			return
		}
		respondInternalError(ctx)
		return
	}
	ctx.JSON(http.StatusOK, report)
}
