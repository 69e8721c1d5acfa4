package sensor

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/sensor-core/internal/infrastructure/database"
)

func TestIngest_ProvisionsAndStores(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Ingest(ctx, "s1", Reading{Gas: 0.5, Fire: 0}))

	ids, err := s.ListSensors(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "s1")

	readings, err := s.Query(ctx, "s1", TimeRange{}, 0)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, 0.5, readings[0].Gas)
	assert.Equal(t, 0, readings[0].Fire)
}

func TestIngest_ZeroTimeUsesClock(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	before := clock.t
	require.NoError(t, s.Ingest(ctx, "s1", Reading{Gas: 1, Fire: 1}))

	readings, err := s.Query(ctx, "s1", TimeRange{}, 0)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.True(t, readings[0].Time.After(before), "time %v should be after %v", readings[0].Time, before)
	assert.Equal(t, time.UTC, readings[0].Time.Location())
}

func TestIngest_ExplicitTimeIsNormalisedToUTC(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	cet := time.FixedZone("CET", 3600)
	at := time.Date(2026, 3, 1, 13, 0, 0, 0, cet)
	require.NoError(t, s.Ingest(ctx, "s1", Reading{Time: at, Gas: 2, Fire: 0}))

	readings, err := s.Query(ctx, "s1", TimeRange{}, 0)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.True(t, at.Equal(readings[0].Time))
	assert.Equal(t, 12, readings[0].Time.Hour())
}

func TestIngest_InvalidID(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	err := s.Ingest(ctx, "bad id", Reading{Gas: 1})
	assert.ErrorIs(t, err, ErrInvalidSensorID)
	assert.NotErrorIs(t, err, ErrIngestion)

	ids, err := s.ListSensors(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Equal(t, uint64(1), s.Stats().Failed)
}

func TestIngest_ConnectionFailureIsIngestionError(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.db.Close())

	err := s.Ingest(context.Background(), "s1", Reading{Gas: 1})
	assert.ErrorIs(t, err, ErrIngestion)
	assert.ErrorIs(t, err, database.ErrConnection)
}

func TestIngest_NotifiesListenersAfterCommit(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	l := &recordingListener{}
	s.AddListener(l)

	var fnCalls int
	s.AddListener(ListenerFunc(func(string, Reading) { fnCalls++ }))

	require.NoError(t, s.Ingest(ctx, "s1", Reading{Gas: 3.25, Fire: 1}))
	assert.Error(t, s.Ingest(ctx, "bad-id", Reading{Gas: 1}))

	assert.Equal(t, []string{"s1"}, l.got)
	assert.Equal(t, 3.25, l.last.Gas)
	assert.False(t, l.last.Time.IsZero(), "listener should see the stamped time")
	assert.Equal(t, 1, fnCalls)

	stats := s.Stats()
	assert.Equal(t, uint64(1), stats.Ingested)
	assert.Equal(t, uint64(1), stats.Failed)
}

func TestIngest_RegistryAndTableStayInStep(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Ingest(ctx, id, Reading{Gas: 1}))
	}

	ids, err := s.ListSensors(ctx)
	require.NoError(t, err)
	for _, id := range ids {
		assert.True(t, tableExists(t, s, tableName(id)), "table for %s", id)
	}
	assert.Len(t, ids, 3)
}

func TestIngest_ReprovisionsDroppedTable(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Ingest(ctx, "s1", Reading{Gas: 1, Fire: 0}))

	err := s.db.WithConn(ctx, func(ctx context.Context, conn *sqlx.Conn) error {
		if _, err := conn.ExecContext(ctx, "DROP TABLE sensor_s1"); err != nil {
			return err
		}
		_, err := conn.ExecContext(ctx, "DELETE FROM sensor_ids WHERE id = 's1'")
		return err
	})
	require.NoError(t, err)

	require.NoError(t, s.Ingest(ctx, "s1", Reading{Gas: 2, Fire: 1}))

	ok, err := s.SensorExists(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, ok)

	readings, err := s.Query(ctx, "s1", TimeRange{}, 0)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, 2.0, readings[0].Gas)
	assert.Equal(t, uint64(2), s.Stats().Ingested)
	assert.Zero(t, s.Stats().Failed)
}
