package sensor

import (
	"context"
	"time"
)

// Reading is one measurement from a sensor.
//
// Time is always UTC when returned from the store and serialises as
// RFC 3339. Fire is the alarm flag as reported by the device (0 or 1 in
// practice, stored as an integer).
type Reading struct {
	Time time.Time `json:"time" db:"time"`
	Gas  float64   `json:"gas" db:"gas"`
	Fire int       `json:"fire" db:"fire"`
}

// TimeRange restricts a query to readings whose time lies within it.
// Both bounds are inclusive; a nil bound is open.
type TimeRange struct {
	Start *time.Time
	End   *time.Time
}

// Valid reports whether the range is non-empty (start not after end).
func (r TimeRange) Valid() bool {
	return r.Start == nil || r.End == nil || !r.Start.After(*r.End)
}

// BatchResult counts the outcome of a batch ingestion run.
type BatchResult struct {
	// Processed is the number of readings stored.
	Processed int `json:"processed"`

	// SkippedMalformed is the number of lines that were not valid records.
	SkippedMalformed int `json:"skipped_malformed"`

	// SkippedFailed is the number of valid records that could not be stored.
	SkippedFailed int `json:"skipped_failed"`
}

// Add accumulates other into r.
func (r *BatchResult) Add(other BatchResult) {
	r.Processed += other.Processed
	r.SkippedMalformed += other.SkippedMalformed
	r.SkippedFailed += other.SkippedFailed
}

// Health is the outcome of a store health probe.
type Health struct {
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// Listener is told about each reading after it has been committed.
//
// OnReading is called synchronously on the ingesting goroutine, so
// implementations must not block.
type Listener interface {
	OnReading(sensorID string, r Reading)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(sensorID string, r Reading)

// OnReading calls f(sensorID, r).
func (f ListenerFunc) OnReading(sensorID string, r Reading) {
	f(sensorID, r)
}

// Ingester records a single reading. *Store satisfies it.
type Ingester interface {
	Ingest(ctx context.Context, sensorID string, r Reading) error
}
