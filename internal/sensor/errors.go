package sensor

import "errors"

// Domain errors for the sensor package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, sensor.ErrSensorNotFound) {
//	    // respond 404
//	}
var (
	// ErrInvalidSensorID is returned when an ID fails the allow-list.
	// No database work is attempted for such IDs.
	ErrInvalidSensorID = errors.New("sensor: invalid id")

	// ErrSensorNotFound is returned when querying a sensor that was never registered.
	ErrSensorNotFound = errors.New("sensor: not found")

	// ErrIngestion wraps any storage failure while recording a reading.
	ErrIngestion = errors.New("sensor: ingestion failed")

	// ErrMalformedRecord marks a batch line that could not be decoded into a reading.
	ErrMalformedRecord = errors.New("sensor: malformed record")

	// ErrInvalidTimeBound is returned when a query bound is not a recognised timestamp.
	ErrInvalidTimeBound = errors.New("sensor: invalid time bound")
)
