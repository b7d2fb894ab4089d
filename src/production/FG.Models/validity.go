package fgmodels

import "strings"

// Device IDs that firmware emits when its configuration is missing. They
// arrive as real strings and must be treated the same as an empty ID.
var invalidDeviceIDs = map[string]struct{}{
	"null":      {},
	"none":      {},
	"undefined": {},
}

// Sensor failure sentinel: the DHT22 driver reports values at or below
// -100 when the sensor cannot be read.
const failedSensorThreshold = -100

// NormalizeDeviceID strips surrounding whitespace from a device ID.
func NormalizeDeviceID(deviceID string) string {
	return strings.TrimSpace(deviceID)
}

// IsValidDeviceID reports whether a device ID identifies a real device.
// Empty, whitespace-only and the firmware placeholder strings are invalid.
func IsValidDeviceID(deviceID string) bool {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return false
	}
	_, placeholder := invalidDeviceIDs[strings.ToLower(deviceID)]
	return !placeholder
}

// IsValidTemperature reports whether a temperature reading came from a
// working sensor.
func IsValidTemperature(celsius float64) bool {
	return celsius > failedSensorThreshold
}

// IsValidHumidity reports whether a humidity reading came from a working
// sensor.
func IsValidHumidity(percent float64) bool {
	return percent > failedSensorThreshold
}

// IsValidDistance reports whether a distance reading is usable. The HRS04
// reports zero or negative values on echo timeouts.
func IsValidDistance(cm float64) bool {
	return cm > 0
}
