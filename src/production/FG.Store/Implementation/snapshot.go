package implementation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"time"

	fgmodels "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Models"
	interfaces "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Store/Interfaces"
)

// The snapshot is a plain JSON array of stored readings, rewritten in full
// on every flush. No incremental append format, no compression.

func saveSnapshot(path string, records []fgmodels.StoredReading) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sensor data: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func loadSnapshot(path string) ([]fgmodels.StoredReading, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []fgmodels.StoredReading
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}

func deleteSnapshot(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// snapshotInfo stats and re-reads the snapshot file so the reported record
// count reflects the file, not memory. The structure check mirrors ingestion
// requirements: the first element must carry the identifying fields.
func snapshotInfo(path string, recordsInMemory int) (*interfaces.SnapshotInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, interfaces.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var raw []map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	structureValid := false
	if len(raw) > 0 {
		structureValid = true
		for _, key := range []string{"device_id", "timestamp", "received_at"} {
			if _, ok := raw[0][key]; !ok {
				structureValid = false
				break
			}
		}
	}

	return &interfaces.SnapshotInfo{
		FilePath:           path,
		FileSizeBytes:      stat.Size(),
		FileSizeMB:         round3(float64(stat.Size()) / (1024 * 1024)),
		LastModified:       stat.ModTime().UTC().Format(time.RFC3339),
		RecordsInFile:      len(raw),
		RecordsInMemory:    recordsInMemory,
		FileStructureValid: structureValid,
	}, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
