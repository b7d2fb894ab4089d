package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	config "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Config"
	logger "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Logger"
	fgmodels "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Models"
	implementation "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Store/Implementation"
	interfaces "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Store/Interfaces"
)

func newTestRouter(t *testing.T) (*gin.Engine, interfaces.SensorStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.StorageConfig{
		DataFile:   filepath.Join(t.TempDir(), "sensor_data.json"),
		MaxRecords: 1000,
		FlushEvery: 10,
	}
	log := logger.NewLogger(&config.LoggingConfig{Level: "error", Format: "json", Output: "stderr"})
	store := implementation.NewMemoryStore(cfg, log)

	router := gin.New()
	NewDataController(store, log).RegisterRoutes(router)
	NewAnalyticsController(store, log).RegisterRoutes(router)
	NewFileController(store, log).RegisterRoutes(router)
	NewHealthController(store).RegisterRoutes(router)
	return router, store
}

func doRequest(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func ingestReading(t *testing.T, router *gin.Engine, deviceID string) {
	t.Helper()
	payload, err := json.Marshal(fgmodels.SensorReading{
		DeviceID:     deviceID,
		Timestamp:    1718000000,
		DistanceCM:   42.5,
		TemperatureC: 21.4,
		GPSValid:     true,
	})
	require.NoError(t, err)
	recorder := doRequest(router, http.MethodPost, "/data", payload)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
}

func TestReceiveSensorData(t *testing.T) {
	router, _ := newTestRouter(t)

	payload := []byte(`{"device_id": "  esp32_001 ", "timestamp": 1718000000, "distance_cm": 42.5,
		"distance_inch": 16.73, "temperature_c": 21.4, "humidity_percent": 55.2,
		"latitude": -1.29, "longitude": 36.82, "gps_valid": true, "gps_raw": "raw", "gps_status": "fix"}`)
	recorder := doRequest(router, http.MethodPost, "/data", payload)

	require.Equal(t, http.StatusOK, recorder.Code)
	var response struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Data    struct {
			RecordsStored int    `json:"records_stored"`
			DeviceID      string `json:"device_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "success", response.Status)
	assert.Equal(t, 1, response.Data.RecordsStored)
	assert.Equal(t, "esp32_001", response.Data.DeviceID)
}

func TestReceiveSensorDataInvalidDeviceID(t *testing.T) {
	router, store := newTestRouter(t)

	for _, id := range []string{"", "null", "NULL", "  "} {
		payload, err := json.Marshal(fgmodels.SensorReading{DeviceID: id})
		require.NoError(t, err)
		recorder := doRequest(router, http.MethodPost, "/data", payload)

		assert.Equal(t, http.StatusBadRequest, recorder.Code, "device id %q", id)
		assert.Equal(t, 0, store.Count())

		var response struct {
			Status string `json:"status"`
			Error  struct {
				Code      string `json:"code"`
				Message   string `json:"message"`
				Timestamp string `json:"timestamp"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Equal(t, "error", response.Status)
		assert.NotEmpty(t, response.Error.Timestamp)
	}
}

func TestReceiveSensorDataMalformedJSON(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder := doRequest(router, http.MethodPost, "/data", []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestGetAllData(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder := doRequest(router, http.MethodGet, "/data", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var empty struct {
		TotalRecords int               `json:"total_records"`
		OldestRecord *string           `json:"oldest_record"`
		Data         []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &empty))
	assert.Equal(t, 0, empty.TotalRecords)
	assert.Nil(t, empty.OldestRecord)
	assert.NotNil(t, empty.Data)

	ingestReading(t, router, "esp32_001")
	ingestReading(t, router, "esp32_002")

	recorder = doRequest(router, http.MethodGet, "/data", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var populated struct {
		TotalRecords int     `json:"total_records"`
		OldestRecord *string `json:"oldest_record"`
		NewestRecord *string `json:"newest_record"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &populated))
	assert.Equal(t, 2, populated.TotalRecords)
	require.NotNil(t, populated.OldestRecord)
	require.NotNil(t, populated.NewestRecord)
	assert.LessOrEqual(t, *populated.OldestRecord, *populated.NewestRecord)
}

func TestGetLatestData(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder := doRequest(router, http.MethodGet, "/data/latest", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	ingestReading(t, router, "esp32_001")
	ingestReading(t, router, "esp32_002")
	ingestReading(t, router, "esp32_001")

	recorder = doRequest(router, http.MethodGet, "/data/latest", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var perDevice struct {
		QueryType    string                     `json:"query_type"`
		TotalDevices int                        `json:"total_devices"`
		Devices      map[string]json.RawMessage `json:"devices"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &perDevice))
	assert.Equal(t, "latest_per_device", perDevice.QueryType)
	assert.Equal(t, 2, perDevice.TotalDevices)

	recorder = doRequest(router, http.MethodGet, "/data/latest?show_all_devices=false", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var single struct {
		QueryType string `json:"query_type"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &single))
	assert.Equal(t, "single_latest", single.QueryType)
}

func TestGetDataByDevice(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder := doRequest(router, http.MethodGet, "/data/device/esp32_001", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	ingestReading(t, router, "esp32_001")
	ingestReading(t, router, "esp32_002")
	ingestReading(t, router, "esp32_001")

	recorder = doRequest(router, http.MethodGet, "/data/device/esp32_001", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var history struct {
		DeviceID     string            `json:"device_id"`
		TotalRecords int               `json:"total_records"`
		Data         []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &history))
	assert.Equal(t, "esp32_001", history.DeviceID)
	assert.Equal(t, 2, history.TotalRecords)
	assert.Len(t, history.Data, 2)
}

func TestDistanceFilterEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder := doRequest(router, http.MethodGet, "/data/distance/10/5", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = doRequest(router, http.MethodGet, "/data/distance/abc/5", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	ingestReading(t, router, "esp32_001")

	recorder = doRequest(router, http.MethodGet, "/data/distance/0/100", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var result struct {
		FilterApplied     string  `json:"filter_applied"`
		TotalMatching     int     `json:"total_matching"`
		PercentageOfTotal float64 `json:"percentage_of_total"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.Equal(t, 1, result.TotalMatching)
	assert.Equal(t, float64(100), result.PercentageOfTotal)
	assert.True(t, strings.HasPrefix(result.FilterApplied, "Distance:"))
}

func TestTemperatureFilterEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder := doRequest(router, http.MethodGet, "/data/temperature/10/5", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	ingestReading(t, router, "esp32_001")

	recorder = doRequest(router, http.MethodGet, "/data/temperature/0/100", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestStatisticsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder := doRequest(router, http.MethodGet, "/stats", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	ingestReading(t, router, "esp32_001")

	recorder = doRequest(router, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var report struct {
		Summary struct {
			TotalRecords  int `json:"total_records"`
			UniqueDevices int `json:"unique_devices"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Summary.TotalRecords)
	assert.Equal(t, 1, report.Summary.UniqueDevices)
}

func TestClearAllEndpoint(t *testing.T) {
	router, store := newTestRouter(t)

	ingestReading(t, router, "esp32_001")
	ingestReading(t, router, "esp32_002")

	recorder := doRequest(router, http.MethodDelete, "/data", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		Status string `json:"status"`
		Data   struct {
			DeletedRecords int  `json:"deleted_records"`
			FileDeleted    bool `json:"file_deleted"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "success", response.Status)
	assert.Equal(t, 2, response.Data.DeletedRecords)
	assert.Equal(t, 0, store.Count())
}

func TestCleanupEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	ingestReading(t, router, "esp32_001")

	recorder := doRequest(router, http.MethodPost, "/data/cleanup", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		Status string `json:"status"`
		Data   struct {
			RemovedRecords int `json:"removed_records"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "success", response.Status)
	assert.Equal(t, 0, response.Data.RemovedRecords)
}

func TestFileEndpoints(t *testing.T) {
	router, store := newTestRouter(t)

	recorder := doRequest(router, http.MethodGet, "/data/file", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = doRequest(router, http.MethodGet, "/data/file/info", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	ingestReading(t, router, "esp32_001")
	require.NoError(t, store.Flush())

	recorder = doRequest(router, http.MethodGet, "/data/file", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Header().Get("Content-Disposition"), "esp32_sensor_data_")

	recorder = doRequest(router, http.MethodGet, "/data/file/info", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var info struct {
		RecordsInFile      int  `json:"records_in_file"`
		RecordsInMemory    int  `json:"records_in_memory"`
		FileStructureValid bool `json:"file_structure_valid"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &info))
	assert.Equal(t, 1, info.RecordsInFile)
	assert.Equal(t, 1, info.RecordsInMemory)
	assert.True(t, info.FileStructureValid)
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder := doRequest(router, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = doRequest(router, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
}
