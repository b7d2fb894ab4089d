package fgmodels

// SensorReading is a single report sent by an ESP32 field unit. The
// payload combines the HRS04 ultrasonic distance sensor, the DHT22
// temperature/humidity sensor and the NEO-6M GPS module.
type SensorReading struct {
	DeviceID        string  `json:"device_id"`
	Timestamp       int64   `json:"timestamp"`
	DistanceCM      float64 `json:"distance_cm"`
	DistanceInch    float64 `json:"distance_inch"`
	TemperatureC    float64 `json:"temperature_c"`
	HumidityPercent float64 `json:"humidity_percent"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	GPSValid        bool    `json:"gps_valid"`
	GPSRaw          string  `json:"gps_raw"`
	GPSStatus       string  `json:"gps_status"`
}

// StoredReading is a SensorReading stamped with the server-side arrival
// time. ReceivedAt is the sole ordering key for latest-record resolution.
type StoredReading struct {
	SensorReading
	ReceivedAt string `json:"received_at"`
}

// ReceivedAtLayout renders timestamps with a fixed-width fractional part so
// that lexicographic comparison of ReceivedAt strings matches temporal order.
const ReceivedAtLayout = "2006-01-02T15:04:05.000000Z07:00"
