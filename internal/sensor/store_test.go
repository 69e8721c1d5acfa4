package sensor

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nerrad567/sensor-core/internal/infrastructure/database"
	_ "github.com/nerrad567/sensor-core/migrations" // Registers embedded migrations
)

// stepClock returns a strictly increasing time on every call.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

// openTestDB opens and migrates a fresh SQLite database.
func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Connect(context.Background(), database.Config{
		Path:        filepath.Join(t.TempDir(), "sensors.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	require.NoError(t, db.Migrate(context.Background()))
	return db
}

// newTestStore returns a Store with a deterministic clock.
func newTestStore(t *testing.T) (*Store, *stepClock) {
	t.Helper()
	clock := newStepClock()
	s := NewStore(openTestDB(t))
	s.now = clock.Now
	return s, clock
}

// recordingListener captures notified readings.
type recordingListener struct {
	mu   sync.Mutex
	got  []string
	last Reading
}

func (l *recordingListener) OnReading(sensorID string, r Reading) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.got = append(l.got, sensorID)
	l.last = r
}
