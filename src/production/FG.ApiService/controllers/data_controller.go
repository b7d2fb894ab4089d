package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	logger "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Logger"
	fgmodels "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Models"
	api_models "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Models/api"
	interfaces "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Store/Interfaces"
)

// DataController handles ingestion, retrieval and management of sensor data
type DataController struct {
	store  interfaces.SensorStore
	logger *logger.Logger
}

// NewDataController creates a new data controller
func NewDataController(store interfaces.SensorStore, logger *logger.Logger) *DataController {
	return &DataController{
		store:  store,
		logger: logger,
	}
}

// RegisterRoutes registers the data routes with Gin
func (c *DataController) RegisterRoutes(router *gin.Engine) {
	data := router.Group("/data")
	{
		data.POST("", c.ReceiveSensorData)
		data.GET("", c.GetAllData)
		data.GET("/latest", c.GetLatestData)
		data.GET("/device/:device_id", c.GetDataByDevice)
		data.POST("/cleanup", c.CleanupInvalidData)
		data.DELETE("", c.ClearAllData)
	}
}

// ReceiveSensorData stores one reading sent by an ESP32 device
func (c *DataController) ReceiveSensorData(ctx *gin.Context) {
	var reading fgmodels.SensorReading
	if err := ctx.ShouldBindJSON(&reading); err != nil {
		respondError(ctx, http.StatusBadRequest, "VALIDATION_ERROR", "Request validation failed")
		return
	}

	result, err := c.store.Ingest(reading)
	if err != nil {
		if errors.Is(err, interfaces.ErrInvalidDeviceID) {
			respondError(ctx, http.StatusBadRequest, codeBadRequest, "Device ID is required and cannot be empty")
			return
		}
		c.logger.ErrorWithError(err, "Error processing sensor data")
		respondError(ctx, http.StatusInternalServerError, codeInternalError, "Failed to process sensor data")
		return
	}

	c.logger.Logger.Info().
		Str("device_id", result.DeviceID).
		Float64("distance_cm", reading.DistanceCM).
		Float64("temperature_c", reading.TemperatureC).
		Bool("gps_valid", reading.GPSValid).
		Msg("New sensor data received")

	ctx.JSON(http.StatusOK, api_models.NewSuccessResponse(
		"Data received and stored successfully",
		result,
	))
}

// GetAllData returns the complete dataset with boundary metadata
func (c *DataController) GetAllData(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.store.GetAll())
}

// GetLatestData returns the latest reading per device, or the single most
// recent reading when show_all_devices=false
func (c *DataController) GetLatestData(ctx *gin.Context) {
	showAllDevices := ctx.DefaultQuery("show_all_devices", "true") != "false"

	if showAllDevices {
		latest, err := c.store.GetLatestPerDevice()
		if err != nil {
			switch {
			case errors.Is(err, interfaces.ErrNoData):
				respondError(ctx, http.StatusNotFound, codeNotFound, "No sensor data available")
			case errors.Is(err, interfaces.ErrNoValidDevices):
				respondError(ctx, http.StatusNotFound, codeNotFound, "No valid device data available")
			default:
				respondInternalError(ctx)
			}
			return
		}
		ctx.JSON(http.StatusOK, latest)
		return
	}

	reading, err := c.store.GetSingleLatest()
	if err != nil {
		respondError(ctx, http.StatusNotFound, codeNotFound, "No sensor data available")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"query_type": "single_latest",
		"data":       reading,
	})
}

// GetDataByDevice returns the full history of one device
func (c *DataController) GetDataByDevice(ctx *gin.Context) {
	deviceID := ctx.Param("device_id")

	history, err := c.store.FilterByDevice(deviceID)
	if err != nil {
		respondError(ctx, http.StatusNotFound, codeNotFound, fmt.Sprintf("No data found for device: %s", deviceID))
		return
	}
	ctx.JSON(http.StatusOK, history)
}

// CleanupInvalidData removes records with empty or placeholder device IDs
func (c *DataController) CleanupInvalidData(ctx *gin.Context) {
	result := c.store.CleanupInvalid()

	c.logger.WithField("removed", result.RemovedRecords).Info("Cleaned up invalid records")

	ctx.JSON(http.StatusOK, api_models.NewSuccessResponse(
		fmt.Sprintf("Cleanup completed: %d invalid records removed", result.RemovedRecords),
		result,
	))
}

// ClearAllData permanently deletes all sensor data from memory and the
// storage file
func (c *DataController) ClearAllData(ctx *gin.Context) {
	deleted, err := c.store.ClearAll()
	if err != nil {
		c.logger.ErrorWithError(err, "Error clearing sensor data")
		respondInternalError(ctx)
		return
	}

	c.logger.WithField("deleted", deleted).Warn("Cleared all sensor records and deleted storage file")

	ctx.JSON(http.StatusOK, api_models.NewSuccessResponse(
		fmt.Sprintf("Successfully cleared all data (%d records deleted)", deleted),
		gin.H{"deleted_records": deleted, "file_deleted": true},
	))
}
