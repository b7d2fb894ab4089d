package interfaces

import (
	"errors"

	fgmodels "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Models"
)

// Store error taxonomy. Controllers map these onto HTTP status codes;
// persistence failures never appear here because they are logged and
// swallowed inside the store.
var (
	// ErrInvalidDeviceID rejects ingestion with an empty or placeholder device ID.
	ErrInvalidDeviceID = errors.New("device ID is required and cannot be empty")
	// ErrNoData signals a query over an empty or non-matching dataset.
	ErrNoData = errors.New("no sensor data available")
	// ErrNoValidDevices signals that every stored record carries an invalid device ID.
	ErrNoValidDevices = errors.New("no valid device data available")
	// ErrInvalidRange rejects malformed filter bounds.
	ErrInvalidRange = errors.New("invalid range parameters")
	// ErrSnapshotNotFound signals that the persisted data file does not exist.
	ErrSnapshotNotFound = errors.New("data file not found")
)

// IngestResult reports the outcome of a successful ingestion.
type IngestResult struct {
	RecordsStored int    `json:"records_stored"`
	DeviceID      string `json:"device_id"`
}

// DatasetSnapshot is the full dataset with boundary metadata.
type DatasetSnapshot struct {
	TotalRecords int                      `json:"total_records"`
	OldestRecord *string                  `json:"oldest_record"`
	NewestRecord *string                  `json:"newest_record"`
	Data         []fgmodels.StoredReading `json:"data"`
}

// LatestPerDevice maps each valid device ID to its most recent reading.
type LatestPerDevice struct {
	QueryType    string                            `json:"query_type"`
	TotalDevices int                               `json:"total_devices"`
	Devices      map[string]fgmodels.StoredReading `json:"devices"`
}

// DeviceHistory is every reading recorded for one device, oldest first.
type DeviceHistory struct {
	DeviceID     string                   `json:"device_id"`
	TotalRecords int                      `json:"total_records"`
	FirstReading string                   `json:"first_reading"`
	LastReading  string                   `json:"last_reading"`
	Data         []fgmodels.StoredReading `json:"data"`
}

// FilterResult is a range-filtered subset of the dataset.
type FilterResult struct {
	FilterApplied     string                   `json:"filter_applied"`
	TotalMatching     int                      `json:"total_matching"`
	PercentageOfTotal float64                  `json:"percentage_of_total"`
	Data              []fgmodels.StoredReading `json:"data"`
}

// CleanupResult reports the outcome of an invalid-record cleanup.
type CleanupResult struct {
	InitialRecords   int `json:"initial_records"`
	RemainingRecords int `json:"remaining_records"`
	RemovedRecords   int `json:"removed_records"`
}

// StatsSummary holds dataset-wide aggregates. UniqueDevices counts distinct
// raw device_id values without validity filtering.
type StatsSummary struct {
	TotalRecords      int     `json:"total_records"`
	DataTimespanHours float64 `json:"data_timespan_hours"`
	LatestReading     string  `json:"latest_reading"`
	GPSFixRatePercent float64 `json:"gps_fix_rate_percent"`
	UniqueDevices     int     `json:"unique_devices"`
}

// TemperatureStats aggregates valid (non-sentinel) temperature readings.
type TemperatureStats struct {
	MinCelsius     float64 `json:"min_celsius"`
	MaxCelsius     float64 `json:"max_celsius"`
	AverageCelsius float64 `json:"average_celsius"`
	ValidReadings  int     `json:"valid_readings"`
}

// HumidityStats aggregates valid (non-sentinel) humidity readings.
type HumidityStats struct {
	MinPercent     float64 `json:"min_percent"`
	MaxPercent     float64 `json:"max_percent"`
	AveragePercent float64 `json:"average_percent"`
	ValidReadings  int     `json:"valid_readings"`
}

// DistanceStats aggregates positive distance readings.
type DistanceStats struct {
	MinCM         float64 `json:"min_cm"`
	MaxCM         float64 `json:"max_cm"`
	AverageCM     float64 `json:"average_cm"`
	ValidReadings int     `json:"valid_readings"`
}

// StatsReport is the full statistical analysis. Per-metric sections are
// present only when at least one valid reading exists for that metric.
type StatsReport struct {
	Summary     StatsSummary      `json:"summary"`
	Temperature *TemperatureStats `json:"temperature,omitempty"`
	Humidity    *HumidityStats    `json:"humidity,omitempty"`
	Distance    *DistanceStats    `json:"distance,omitempty"`
}

// SnapshotInfo is metadata about the persisted data file.
type SnapshotInfo struct {
	FilePath           string  `json:"file_path"`
	FileSizeBytes      int64   `json:"file_size_bytes"`
	FileSizeMB         float64 `json:"file_size_mb"`
	LastModified       string  `json:"last_modified"`
	RecordsInFile      int     `json:"records_in_file"`
	RecordsInMemory    int     `json:"records_in_memory"`
	FileStructureValid bool    `json:"file_structure_valid"`
}

// SensorStore is the rolling in-memory dataset with derived query
// operations and a periodic persistence side effect. Implementations must
// make mutations mutually exclusive with reads.
type SensorStore interface {
	// Ingest operations
	Ingest(reading fgmodels.SensorReading) (*IngestResult, error)

	// Query operations
	GetAll() *DatasetSnapshot
	GetLatestPerDevice() (*LatestPerDevice, error)
	GetSingleLatest() (*fgmodels.StoredReading, error)
	FilterByDevice(deviceID string) (*DeviceHistory, error)
	FilterByDistance(minDist, maxDist float64) (*FilterResult, error)
	FilterByTemperature(minTemp, maxTemp float64) (*FilterResult, error)

	// Statistics
	Statistics() (*StatsReport, error)
	Count() int

	// Management operations
	CleanupInvalid() *CleanupResult
	ClearAll() (int, error)

	// Persistence lifecycle
	Load() error
	Flush() error
	FileInfo() (*SnapshotInfo, error)
	SnapshotPath() string
}
