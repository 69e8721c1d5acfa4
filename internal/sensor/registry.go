package sensor

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nerrad567/sensor-core/internal/infrastructure/database"
)

const (
	insertRegistrySQL = "INSERT INTO sensor_ids (id, created_at) VALUES (?, ?) ON CONFLICT (id) DO NOTHING"
	listSensorsSQL    = "SELECT id FROM sensor_ids ORDER BY created_at DESC, id"
	sensorExistsSQL   = "SELECT COUNT(*) FROM sensor_ids WHERE id = ?"
)

// EnsureSensor registers a sensor and creates its reading table if needed.
//
// The registry row and the table are created together in one transaction,
// so either both exist afterwards or neither does. Calling it again for a
// known sensor, from any goroutine or process, has no further effect.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - id: Sensor ID; must pass ValidateID
//
// Returns:
//   - error: ErrInvalidSensorID, a *database.ConnectionError, or the DDL failure
func (s *Store) EnsureSensor(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if s.isKnown(id) {
		return nil
	}

	err := s.db.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		return s.ensureSensorTx(ctx, tx, id)
	})
	if err != nil {
		return fmt.Errorf("ensuring sensor %s: %w", id, err)
	}

	s.markKnown(id)
	return nil
}

// ensureSensorTx runs the idempotent registry DDL/DML inside tx.
func (s *Store) ensureSensorTx(ctx context.Context, tx *sqlx.Tx, id string) error {
	d := s.db.Dialect()

	if d.LockStatement != "" {
		if _, err := tx.ExecContext(ctx, d.Rebind(d.LockStatement), id); err != nil {
			return fmt.Errorf("taking sensor lock: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, d.Rebind(insertRegistrySQL), id, s.now().UTC()); err != nil {
		return fmt.Errorf("registering sensor: %w", err)
	}

	if _, err := tx.ExecContext(ctx, createTableSQL(d, id)); err != nil {
		return fmt.Errorf("creating sensor table: %w", err)
	}

	if _, err := tx.ExecContext(ctx, createIndexSQL(id)); err != nil {
		return fmt.Errorf("creating sensor index: %w", err)
	}
	return nil
}

// createTableSQL builds the reading table DDL for a validated ID.
func createTableSQL(d database.Dialect, id string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		row_id %s,
		time %s NOT NULL,
		gas %s NOT NULL,
		fire INTEGER NOT NULL,
		created_at %s NOT NULL
	)`,
		database.QuoteIdent(tableName(id)),
		d.SerialPrimaryKey,
		d.TimestampType,
		d.FloatType,
		d.TimestampType,
	)
}

// createIndexSQL builds the time index DDL for a validated ID.
func createIndexSQL(id string) string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (time DESC)",
		database.QuoteIdent(indexName(id)),
		database.QuoteIdent(tableName(id)),
	)
}

// ListSensors returns every registered sensor ID, most recently created first.
// Sensors created at the same instant are ordered by ID.
func (s *Store) ListSensors(ctx context.Context) ([]string, error) {
	ids := []string{}
	err := s.db.WithConn(ctx, func(ctx context.Context, conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, &ids, listSensorsSQL)
	})
	if err != nil {
		return nil, fmt.Errorf("listing sensors: %w", err)
	}
	return ids, nil
}

// SensorExists reports whether id is registered.
//
// IDs that fail validation can never be registered, so they report false
// without touching the database.
func (s *Store) SensorExists(ctx context.Context, id string) (bool, error) {
	if ValidateID(id) != nil {
		return false, nil
	}

	var exists bool
	err := s.db.WithConn(ctx, func(ctx context.Context, conn *sqlx.Conn) error {
		var err error
		exists, err = s.sensorExistsConn(ctx, conn, id)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("checking sensor %s: %w", id, err)
	}
	return exists, nil
}

func (s *Store) sensorExistsConn(ctx context.Context, conn *sqlx.Conn, id string) (bool, error) {
	var n int
	if err := conn.GetContext(ctx, &n, s.db.Dialect().Rebind(sensorExistsSQL), id); err != nil {
		return false, err
	}
	return n > 0, nil
}
