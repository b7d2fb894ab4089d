package container

import (
	"context"
	"fmt"
	"sync"

	config "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Config"
	logger "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Logger"
	implementation "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Store/Implementation"
	interfaces "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Store/Interfaces"
)

// Container manages dependencies and their lifecycle for the API service
type Container struct {
	config *config.Config
	logger *logger.Logger
	store  interfaces.SensorStore

	// Mutex for thread-safe access
	mu sync.RWMutex

	// Cleanup functions, run in reverse registration order
	cleanupFuncs []func() error
}

// IngestorContainer manages dependencies for the MQTT Ingestor service
type IngestorContainer struct {
	config *config.IngestorConfig
	logger *logger.Logger
}

// NewApiContainer creates a new container for the API service
func NewApiContainer() (*Container, error) {
	cfg, err := config.LoadApiConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load API configuration: %w", err)
	}

	log := logger.NewLogger(&cfg.Logging)

	return &Container{
		config: cfg,
		logger: log,
	}, nil
}

// NewIngestorContainer creates a new container for the MQTT Ingestor service
func NewIngestorContainer() (*IngestorContainer, error) {
	cfg, err := config.LoadIngestorConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load ingestor configuration: %w", err)
	}

	log := logger.NewLogger(&cfg.Logging)

	return &IngestorContainer{
		config: cfg,
		logger: log,
	}, nil
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.logger
}

// GetConfig returns the ingestor configuration
func (c *IngestorContainer) GetConfig() *config.IngestorConfig {
	return c.config
}

// GetLogger returns the logger
func (c *IngestorContainer) GetLogger() *logger.Logger {
	return c.logger
}

// InitializeStore creates the rolling sensor store, populates it from the
// persisted snapshot and registers a final flush for shutdown.
func (c *Container) InitializeStore() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store != nil {
		return nil
	}

	store := implementation.NewMemoryStore(&c.config.Storage, c.logger)
	if err := store.Load(); err != nil {
		return fmt.Errorf("failed to load sensor store: %w", err)
	}

	c.store = store
	c.cleanupFuncs = append(c.cleanupFuncs, func() error {
		c.logger.Info("Flushing sensor data on shutdown")
		return store.Flush()
	})
	return nil
}

// GetStore returns the sensor store
func (c *Container) GetStore() (interfaces.SensorStore, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.store == nil {
		return nil, fmt.Errorf("sensor store is not initialized")
	}
	return c.store, nil
}

// Shutdown runs all registered cleanup functions
func (c *Container) Shutdown(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.cleanupFuncs) - 1; i >= 0; i-- {
		if err := c.cleanupFuncs[i](); err != nil {
			c.logger.ErrorWithError(err, "Cleanup failed during shutdown")
		}
	}
	c.cleanupFuncs = nil
}
