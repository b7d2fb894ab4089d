package implementation

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"sync"
	"time"

	config "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Config"
	logger "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Logger"
	fgmodels "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Models"
	interfaces "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Store/Interfaces"
)

// MemoryStore is the rolling in-memory sensor dataset. Readings are kept in
// insertion order, capped at maxRecords by dropping the oldest excess, and
// flushed to a JSON snapshot file every flushEvery successful insertions.
//
// All mutations take the write lock; queries take the read lock, so a query
// can never observe a sequence mid-truncation. The snapshot flush runs under
// the same lock, matching the synchronous semantics of the serving path.
type MemoryStore struct {
	mu         sync.RWMutex
	records    []fgmodels.StoredReading
	dataFile   string
	maxRecords int
	flushEvery int
	logger     *logger.Logger
	clock      func() time.Time
}

var _ interfaces.SensorStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty rolling store. Call Load to populate it
// from a previously persisted snapshot.
func NewMemoryStore(cfg *config.StorageConfig, log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		records:    make([]fgmodels.StoredReading, 0),
		dataFile:   cfg.DataFile,
		maxRecords: cfg.MaxRecords,
		flushEvery: cfg.FlushEvery,
		logger:     log.WithComponent("sensor-store"),
		clock:      time.Now,
	}
}

// Ingest validates, stamps and appends a reading. The stored record keeps
// the device ID exactly as sent; only the returned DeviceID is normalized.
func (s *MemoryStore) Ingest(reading fgmodels.SensorReading) (*interfaces.IngestResult, error) {
	deviceID := fgmodels.NormalizeDeviceID(reading.DeviceID)
	if !fgmodels.IsValidDeviceID(deviceID) {
		return nil, interfaces.ErrInvalidDeviceID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := fgmodels.StoredReading{
		SensorReading: reading,
		ReceivedAt:    s.clock().UTC().Format(fgmodels.ReceivedAtLayout),
	}
	s.records = append(s.records, stored)

	// Maintain the rolling buffer with a single truncation pass.
	if len(s.records) > s.maxRecords {
		s.records = append(make([]fgmodels.StoredReading, 0, s.maxRecords), s.records[len(s.records)-s.maxRecords:]...)
	}

	if len(s.records)%s.flushEvery == 0 {
		if err := s.flushLocked(); err != nil {
			s.logger.ErrorWithError(err, "Failed to persist sensor data")
		}
	}

	return &interfaces.IngestResult{
		RecordsStored: len(s.records),
		DeviceID:      deviceID,
	}, nil
}

// GetAll returns a snapshot of the complete dataset, oldest first.
func (s *MemoryStore) GetAll() *interfaces.DatasetSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := &interfaces.DatasetSnapshot{
		TotalRecords: len(s.records),
		Data:         append(make([]fgmodels.StoredReading, 0, len(s.records)), s.records...),
	}
	if len(s.records) > 0 {
		oldest := s.records[0].ReceivedAt
		newest := s.records[len(s.records)-1].ReceivedAt
		snapshot.OldestRecord = &oldest
		snapshot.NewestRecord = &newest
	}
	return snapshot
}

// GetLatestPerDevice resolves the most recent reading per valid device ID.
// Records with placeholder device IDs are skipped. Ties on ReceivedAt keep
// the first-seen record.
func (s *MemoryStore) GetLatestPerDevice() (*interfaces.LatestPerDevice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return nil, interfaces.ErrNoData
	}

	latest := make(map[string]fgmodels.StoredReading)
	for _, record := range s.records {
		deviceID := fgmodels.NormalizeDeviceID(record.DeviceID)
		if !fgmodels.IsValidDeviceID(deviceID) {
			continue
		}
		// ReceivedAt strings are fixed-width so lexicographic order is
		// temporal order.
		if current, ok := latest[deviceID]; !ok || record.ReceivedAt > current.ReceivedAt {
			latest[deviceID] = record
		}
	}

	if len(latest) == 0 {
		return nil, interfaces.ErrNoValidDevices
	}

	return &interfaces.LatestPerDevice{
		QueryType:    "latest_per_device",
		TotalDevices: len(latest),
		Devices:      latest,
	}, nil
}

// GetSingleLatest returns the most recently inserted reading regardless of
// device validity.
func (s *MemoryStore) GetSingleLatest() (*fgmodels.StoredReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return nil, interfaces.ErrNoData
	}
	last := s.records[len(s.records)-1]
	return &last, nil
}

// FilterByDevice returns every reading whose device_id equals deviceID
// exactly, without normalization.
func (s *MemoryStore) FilterByDevice(deviceID string) (*interfaces.DeviceHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matching := make([]fgmodels.StoredReading, 0)
	for _, record := range s.records {
		if record.DeviceID == deviceID {
			matching = append(matching, record)
		}
	}
	if len(matching) == 0 {
		return nil, interfaces.ErrNoData
	}

	return &interfaces.DeviceHistory{
		DeviceID:     deviceID,
		TotalRecords: len(matching),
		FirstReading: matching[0].ReceivedAt,
		LastReading:  matching[len(matching)-1].ReceivedAt,
		Data:         matching,
	}, nil
}

// FilterByDistance returns readings whose distance_cm lies in the inclusive
// [minDist, maxDist] range.
func (s *MemoryStore) FilterByDistance(minDist, maxDist float64) (*interfaces.FilterResult, error) {
	if minDist < 0 || maxDist < minDist {
		return nil, interfaces.ErrInvalidRange
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matching := make([]fgmodels.StoredReading, 0)
	for _, record := range s.records {
		if record.DistanceCM >= minDist && record.DistanceCM <= maxDist {
			matching = append(matching, record)
		}
	}

	return &interfaces.FilterResult{
		FilterApplied:     fmt.Sprintf("Distance: %gcm - %gcm", minDist, maxDist),
		TotalMatching:     len(matching),
		PercentageOfTotal: percentage(len(matching), len(s.records)),
		Data:              matching,
	}, nil
}

// FilterByTemperature returns readings whose temperature_c lies in the
// inclusive [minTemp, maxTemp] range, excluding sensor-failure sentinels.
func (s *MemoryStore) FilterByTemperature(minTemp, maxTemp float64) (*interfaces.FilterResult, error) {
	if maxTemp < minTemp {
		return nil, interfaces.ErrInvalidRange
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matching := make([]fgmodels.StoredReading, 0)
	for _, record := range s.records {
		if record.TemperatureC >= minTemp && record.TemperatureC <= maxTemp && fgmodels.IsValidTemperature(record.TemperatureC) {
			matching = append(matching, record)
		}
	}

	return &interfaces.FilterResult{
		FilterApplied:     fmt.Sprintf("Temperature: %g°C - %g°C", minTemp, maxTemp),
		TotalMatching:     len(matching),
		PercentageOfTotal: percentage(len(matching), len(s.records)),
		Data:              matching,
	}, nil
}

// Statistics computes the aggregate report over the current dataset.
func (s *MemoryStore) Statistics() (*interfaces.StatsReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return nil, interfaces.ErrNoData
	}

	gpsFixes := 0
	uniqueDevices := make(map[string]struct{})
	temps := make([]float64, 0, len(s.records))
	humidities := make([]float64, 0, len(s.records))
	distances := make([]float64, 0, len(s.records))

	for _, record := range s.records {
		if record.GPSValid {
			gpsFixes++
		}
		// Raw device IDs on purpose: the distinct count does not apply the
		// validity filter that device-scoped views do.
		uniqueDevices[record.DeviceID] = struct{}{}

		if fgmodels.IsValidTemperature(record.TemperatureC) {
			temps = append(temps, record.TemperatureC)
		}
		if fgmodels.IsValidHumidity(record.HumidityPercent) {
			humidities = append(humidities, record.HumidityPercent)
		}
		if fgmodels.IsValidDistance(record.DistanceCM) {
			distances = append(distances, record.DistanceCM)
		}
	}

	report := &interfaces.StatsReport{
		Summary: interfaces.StatsSummary{
			TotalRecords:      len(s.records),
			DataTimespanHours: s.timespanHoursLocked(),
			LatestReading:     s.records[len(s.records)-1].ReceivedAt,
			GPSFixRatePercent: percentage(gpsFixes, len(s.records)),
			UniqueDevices:     len(uniqueDevices),
		},
	}

	if len(temps) > 0 {
		min, max, avg := minMaxAvg(temps)
		report.Temperature = &interfaces.TemperatureStats{
			MinCelsius:     round2(min),
			MaxCelsius:     round2(max),
			AverageCelsius: round2(avg),
			ValidReadings:  len(temps),
		}
	}
	if len(humidities) > 0 {
		min, max, avg := minMaxAvg(humidities)
		report.Humidity = &interfaces.HumidityStats{
			MinPercent:     round2(min),
			MaxPercent:     round2(max),
			AveragePercent: round2(avg),
			ValidReadings:  len(humidities),
		}
	}
	if len(distances) > 0 {
		min, max, avg := minMaxAvg(distances)
		report.Distance = &interfaces.DistanceStats{
			MinCM:         round2(min),
			MaxCM:         round2(max),
			AverageCM:     round2(avg),
			ValidReadings: len(distances),
		}
	}

	return report, nil
}

// Count returns the number of records currently held in memory.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// CleanupInvalid removes every record with an invalid device ID, preserving
// the relative order of the rest, and persists the result. Running it on an
// already-clean dataset removes nothing.
func (s *MemoryStore) CleanupInvalid() *interfaces.CleanupResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	initial := len(s.records)
	cleaned := make([]fgmodels.StoredReading, 0, initial)
	for _, record := range s.records {
		if fgmodels.IsValidDeviceID(record.DeviceID) {
			cleaned = append(cleaned, record)
		}
	}
	s.records = cleaned

	if err := s.flushLocked(); err != nil {
		s.logger.ErrorWithError(err, "Failed to persist cleaned sensor data")
	}

	return &interfaces.CleanupResult{
		InitialRecords:   initial,
		RemainingRecords: len(cleaned),
		RemovedRecords:   initial - len(cleaned),
	}
}

// ClearAll empties the dataset and deletes the snapshot file. Not
// recoverable.
func (s *MemoryStore) ClearAll() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := len(s.records)
	s.records = make([]fgmodels.StoredReading, 0)

	if err := deleteSnapshot(s.dataFile); err != nil {
		return deleted, fmt.Errorf("failed to delete data file: %w", err)
	}
	return deleted, nil
}

// Load populates the store from the snapshot file. A missing file starts an
// empty dataset; a corrupt file is logged and ignored, since in-memory state
// is authoritative from here on.
func (s *MemoryStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := loadSnapshot(s.dataFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Info("Starting with empty dataset")
			return nil
		}
		s.logger.ErrorWithError(err, "Failed to load persisted sensor data")
		return nil
	}

	if len(records) > s.maxRecords {
		records = records[len(records)-s.maxRecords:]
	}
	s.records = records
	s.logger.WithField("records", len(records)).Info("Loaded existing sensor records")
	return nil
}

// Flush writes the current dataset to the snapshot file.
func (s *MemoryStore) Flush() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flushLocked()
}

// FileInfo returns metadata about the snapshot file, including the record
// count consistency check between file and memory.
func (s *MemoryStore) FileInfo() (*interfaces.SnapshotInfo, error) {
	s.mu.RLock()
	inMemory := len(s.records)
	s.mu.RUnlock()

	return snapshotInfo(s.dataFile, inMemory)
}

// SnapshotPath returns the path of the snapshot file.
func (s *MemoryStore) SnapshotPath() string {
	return s.dataFile
}

// flushLocked persists the dataset; the caller must hold at least the read
// lock.
func (s *MemoryStore) flushLocked() error {
	if err := saveSnapshot(s.dataFile, s.records); err != nil {
		return err
	}
	s.logger.WithField("records", len(s.records)).Debug("Sensor data saved")
	return nil
}

// timespanHoursLocked is the ReceivedAt span between the first and last
// record, in hours; zero with fewer than two records.
func (s *MemoryStore) timespanHoursLocked() float64 {
	if len(s.records) < 2 {
		return 0
	}
	first, err1 := time.Parse(time.RFC3339Nano, s.records[0].ReceivedAt)
	last, err2 := time.Parse(time.RFC3339Nano, s.records[len(s.records)-1].ReceivedAt)
	if err1 != nil || err2 != nil {
		return 0
	}
	return last.Sub(first).Hours()
}

func percentage(matching, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(matching) / float64(total) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func minMaxAvg(values []float64) (min, max, avg float64) {
	min, max = values[0], values[0]
	sum := 0.0
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	return min, max, sum / float64(len(values))
}
