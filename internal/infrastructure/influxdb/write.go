package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement and key names for mirrored readings.
const (
	MeasurementSensorReadings = "sensor_readings"

	tagSensorID = "sensor_id"
	fieldGas    = "gas"
	fieldFire   = "fire"
)

// WriteReading queues one sensor reading for the mirror.
//
// The point is tagged with the sensor ID and carries gas and fire as
// fields, at the reading's own timestamp. It returns immediately; the
// point is sent with the next batch. Calls on a closed client are dropped.
//
// Example:
//
//	client.WriteReading("kitchen_01", 0.42, 0, time.Now())
func (c *Client) WriteReading(sensorID string, gas float64, fire int, ts time.Time) {
	if !c.IsConnected() || c.points == nil {
		return
	}
	c.points.WritePoint(readingPoint(sensorID, gas, fire, ts))
}

// readingPoint builds the line protocol point for a reading.
func readingPoint(sensorID string, gas float64, fire int, ts time.Time) *write.Point {
	return write.NewPoint(
		MeasurementSensorReadings,
		map[string]string{tagSensorID: sensorID},
		map[string]interface{}{
			fieldGas:  gas,
			fieldFire: int64(fire),
		},
		ts,
	)
}
