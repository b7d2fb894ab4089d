package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gitlab.com/floodguard1/fg.sensor_server/src/production/FG.ApiService/controllers"
	"gitlab.com/floodguard1/fg.sensor_server/src/production/FG.ApiService/middleware"
	container "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Container"
)

func main() {
	// Initialize dependency injection container
	ctr, err := container.NewApiContainer()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize container: %v", err))
	}
	defer ctr.Shutdown(context.Background())

	logger := ctr.GetLogger()
	logger.Info("Starting Sensor API Service")

	// Initialize the rolling sensor store from the persisted snapshot
	if err := ctr.InitializeStore(); err != nil {
		logger.FatalWithError(err, "Failed to initialize sensor store")
	}
	store, err := ctr.GetStore()
	if err != nil {
		logger.FatalWithError(err, "Failed to get sensor store")
	}

	// Get configuration
	config := ctr.GetConfig()

	// Initialize Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))

	// Configure CORS from config
	corsConfig := cors.Config{
		AllowOrigins:     config.CORS.AllowedOrigins,
		AllowMethods:     config.CORS.AllowedMethods,
		AllowHeaders:     config.CORS.AllowedHeaders,
		ExposeHeaders:    config.CORS.ExposedHeaders,
		AllowCredentials: config.CORS.AllowCredentials,
		MaxAge:           time.Duration(config.CORS.MaxAge) * time.Second,
	}
	if len(config.CORS.AllowedOrigins) == 1 && config.CORS.AllowedOrigins[0] == "*" {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	router.Use(cors.New(corsConfig))

	// Create controllers and register routes
	dataController := controllers.NewDataController(store, logger)
	analyticsController := controllers.NewAnalyticsController(store, logger)
	fileController := controllers.NewFileController(store, logger)
	dashboardController := controllers.NewDashboardController(config.Storage.DashboardFile, logger)
	healthController := controllers.NewHealthController(store)

	dataController.RegisterRoutes(router)
	analyticsController.RegisterRoutes(router)
	fileController.RegisterRoutes(router)
	dashboardController.RegisterRoutes(router)
	healthController.RegisterRoutes(router)

	// Get port from configuration
	port := config.Server.Port

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
		IdleTimeout:  config.Server.IdleTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		logger.Info("HTTP server starting on port " + port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithError(err, "Failed to start HTTP server")
		}
	}()

	logger.Info("Sensor API service running... press Ctrl+C to stop")

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("Shutting down...")

	// Graceful shutdown; the container flushes the store afterwards
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithError(err, "Server forced to shutdown")
	}
}
