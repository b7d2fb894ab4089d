package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	logger "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Logger"
	interfaces "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Store/Interfaces"
)

// FileController exposes the persisted snapshot for download and inspection
type FileController struct {
	store  interfaces.SensorStore
	logger *logger.Logger
}

// NewFileController creates a new file controller
func NewFileController(store interfaces.SensorStore, logger *logger.Logger) *FileController {
	return &FileController{
		store:  store,
		logger: logger,
	}
}

// RegisterRoutes registers the file routes with Gin
func (c *FileController) RegisterRoutes(router *gin.Engine) {
	router.GET("/data/file", c.DownloadDataFile)
	router.GET("/data/file/info", c.GetFileInfo)
}

// DownloadDataFile serves the snapshot file as a timestamped attachment
func (c *FileController) DownloadDataFile(ctx *gin.Context) {
	path := c.store.SnapshotPath()
	if _, err := os.Stat(path); err != nil {
		respondError(ctx, http.StatusNotFound, codeNotFound, "Data file not found")
		return
	}

	filename := fmt.Sprintf("esp32_sensor_data_%s.json", time.Now().Format("20060102_150405"))
	ctx.Header("Content-Type", "application/json")
	ctx.FileAttachment(path, filename)
}

// GetFileInfo returns snapshot metadata, including the record count
// consistency check between file and memory
func (c *FileController) GetFileInfo(ctx *gin.Context) {
	info, err := c.store.FileInfo()
	if err != nil {
		if errors.Is(err, interfaces.ErrSnapshotNotFound) {
			respondError(ctx, http.StatusNotFound, codeNotFound, "Data file not found")
			return
		}
		c.logger.ErrorWithError(err, "Error reading file info")
		respondError(ctx, http.StatusInternalServerError, codeInternalError, "Error reading file info")
		return
	}
	ctx.JSON(http.StatusOK, info)
}
