package sensor

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nerrad567/sensor-core/internal/infrastructure/database"
)

// Ingest stores one reading for a sensor, provisioning the sensor on first sight.
//
// Provisioning and the insert share one transaction: a failure leaves no
// partial state behind. A zero r.Time is replaced with the current time.
// Registered listeners are notified only after the commit succeeds.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - id: Sensor ID; must pass ValidateID
//   - r: The reading to store
//
// Returns:
//   - error: ErrInvalidSensorID, or an error wrapping ErrIngestion and the cause
func (s *Store) Ingest(ctx context.Context, id string, r Reading) error {
	if err := ValidateID(id); err != nil {
		s.failed.Add(1)
		return err
	}

	now := s.now().UTC()
	if r.Time.IsZero() {
		r.Time = now
	}
	r.Time = r.Time.UTC()

	provisioned := s.isKnown(id)
	err := s.insertReading(ctx, id, r, now, !provisioned)
	if err != nil && provisioned && database.IsMissingTable(err) {
		// The table went away behind the cache, e.g. dropped by an operator.
		s.known.Delete(id)
		s.logger.Warn("sensor table missing, provisioning again", "sensor_id", id)
		provisioned = false
		err = s.insertReading(ctx, id, r, now, true)
	}
	if err != nil {
		s.failed.Add(1)
		s.logger.Error("reading ingestion failed", "sensor_id", id, "error", err)
		return fmt.Errorf("%w: %w", ErrIngestion, err)
	}

	if !provisioned {
		s.markKnown(id)
		s.logger.Debug("sensor provisioned", "sensor_id", id)
	}
	s.ingested.Add(1)
	s.notify(id, r)
	return nil
}

// insertReading appends r in its own transaction, running the registry
// DDL/DML first when ensure is set.
func (s *Store) insertReading(ctx context.Context, id string, r Reading, now time.Time, ensure bool) error {
	insert := s.db.Dialect().Rebind(fmt.Sprintf(
		"INSERT INTO %s (time, gas, fire, created_at) VALUES (?, ?, ?, ?)",
		database.QuoteIdent(tableName(id)),
	))

	return s.db.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		if ensure {
			if err := s.ensureSensorTx(ctx, tx, id); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, insert, r.Time, r.Gas, r.Fire, now); err != nil {
			return fmt.Errorf("inserting reading: %w", err)
		}
		return nil
	})
}
