package sensor

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/sensor-core/internal/infrastructure/database"
)

// Logger defines the logging interface used by the Store.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Store is the data-access core for sensor readings.
//
// It owns the schema registry, the ingestion path and the query path. Every
// operation borrows a connection from the database for its own duration only.
//
// All public methods are thread-safe.
type Store struct {
	db     *database.DB
	logger Logger
	now    func() time.Time

	// known holds IDs whose table this process has seen created. It only
	// lets Ingest skip the registry DDL; correctness never depends on it.
	// If a table is dropped underneath, the insert fails with a missing
	// table, the entry is cleared and the sensor is provisioned again.
	known sync.Map

	listenersMu sync.RWMutex
	listeners   []Listener

	ingested atomic.Uint64
	failed   atomic.Uint64
}

// IngestStats are running counters since the Store was created.
type IngestStats struct {
	Ingested uint64 `json:"ingested"`
	Failed   uint64 `json:"failed"`
}

// NewStore creates a Store on top of an open database.
//
// The registry schema must already be migrated (see database.DB.Migrate).
func NewStore(db *database.DB) *Store {
	return &Store{
		db:     db,
		logger: noopLogger{},
		now:    time.Now,
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// AddListener registers l to be told about every committed reading.
func (s *Store) AddListener(l Listener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Stats returns ingestion counters.
func (s *Store) Stats() IngestStats {
	return IngestStats{
		Ingested: s.ingested.Load(),
		Failed:   s.failed.Load(),
	}
}

func (s *Store) notify(sensorID string, r Reading) {
	s.listenersMu.RLock()
	defer s.listenersMu.RUnlock()
	for _, l := range s.listeners {
		l.OnReading(sensorID, r)
	}
}

func (s *Store) isKnown(id string) bool {
	_, ok := s.known.Load(id)
	return ok
}

func (s *Store) markKnown(id string) {
	s.known.Store(id, struct{}{})
}
