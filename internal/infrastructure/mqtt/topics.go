package mqtt

import (
	"strings"
)

// DefaultTopicPrefix is the root of the sensor topic tree when none is configured.
const DefaultTopicPrefix = "sensors"

// Topic segments below the prefix.
const (
	segmentReadings = "readings"
	segmentSystem   = "system"
	segmentStatus   = "status"
)

// Topics builds the sensor topic hierarchy under a configurable prefix.
//
//	<prefix>/<sensor_id>/readings   reading published by a sensor
//	<prefix>/system/status          service online/offline (retained, LWT)
//
// The zero value uses DefaultTopicPrefix.
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	p := strings.Trim(t.Prefix, "/")
	if p == "" {
		return DefaultTopicPrefix
	}
	return p
}

// SensorReadings returns the topic a sensor publishes readings on.
//
// Example: sensors/kitchen_01/readings
func (t Topics) SensorReadings(sensorID string) string {
	return t.prefix() + "/" + sensorID + "/" + segmentReadings
}

// AllSensorReadings returns the subscription pattern for every sensor.
//
// Pattern: sensors/+/readings
func (t Topics) AllSensorReadings() string {
	return t.SensorReadings("+")
}

// SystemStatus returns the service status topic.
//
// Example: sensors/system/status
func (t Topics) SystemStatus() string {
	return t.prefix() + "/" + segmentSystem + "/" + segmentStatus
}

// SensorIDFromTopic extracts the sensor ID from a readings topic.
//
// Returns false if the topic does not have the shape <prefix>/<id>/readings.
// The ID itself is not validated here.
func (t Topics) SensorIDFromTopic(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, t.prefix()+"/")
	if !ok {
		return "", false
	}
	id, ok := strings.CutSuffix(rest, "/"+segmentReadings)
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
