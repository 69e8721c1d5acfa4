package sensor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/nerrad567/sensor-core/internal/infrastructure/database"
)

const (
	// DefaultQueryLimit is used when the caller passes a non-positive limit.
	DefaultQueryLimit = 100

	// MaxQueryLimit caps a single query.
	MaxQueryLimit = 1000
)

// Query returns a sensor's readings, newest first.
//
// Only the bounds present in tr are applied and both are inclusive. Bounds
// are always bound as parameters.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - id: Sensor ID
//   - tr: Optional time window
//   - limit: Maximum readings to return (default 100, max 1000)
//
// Returns:
//   - []Reading: Matching readings ordered by time descending (never nil)
//   - error: ErrSensorNotFound for unknown or invalid IDs, or the query failure
func (s *Store) Query(ctx context.Context, id string, tr TimeRange, limit int) ([]Reading, error) {
	if ValidateID(id) != nil {
		return nil, fmt.Errorf("%w: %s", ErrSensorNotFound, id)
	}

	query, args := buildReadingQuery(s.db.Dialect(), id, tr, clampLimit(limit))

	readings := []Reading{}
	err := s.db.WithConn(ctx, func(ctx context.Context, conn *sqlx.Conn) error {
		exists, err := s.sensorExistsConn(ctx, conn, id)
		if err != nil {
			return fmt.Errorf("checking sensor: %w", err)
		}
		if !exists {
			return ErrSensorNotFound
		}
		return conn.SelectContext(ctx, &readings, query, args...)
	})
	if errors.Is(err, ErrSensorNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSensorNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying sensor %s: %w", id, err)
	}

	for i := range readings {
		readings[i].Time = readings[i].Time.UTC()
	}
	return readings, nil
}

// buildReadingQuery assembles the SELECT for a validated ID.
func buildReadingQuery(d database.Dialect, id string, tr TimeRange, limit int) (string, []any) {
	var (
		where []string
		args  []any
	)
	if tr.Start != nil {
		where = append(where, "time >= ?")
		args = append(args, tr.Start.UTC())
	}
	if tr.End != nil {
		where = append(where, "time <= ?")
		args = append(args, tr.End.UTC())
	}

	var b strings.Builder
	b.WriteString("SELECT time, gas, fire FROM ")
	b.WriteString(database.QuoteIdent(tableName(id)))
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY time DESC, row_id DESC LIMIT ?")
	args = append(args, limit)

	return d.Rebind(b.String()), args
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultQueryLimit
	case limit > MaxQueryLimit:
		return MaxQueryLimit
	default:
		return limit
	}
}
