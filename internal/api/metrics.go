package api

import (
	"net/http"
	"runtime"
	"time"
)

// bytesPerMB converts byte counts to megabytes.
const bytesPerMB = 1024 * 1024

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string           `json:"timestamp"`
	Version       string           `json:"version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Runtime       RuntimeMetrics   `json:"runtime"`
	WebSocket     WSMetrics        `json:"websocket"`
	Ingest        IngestMetrics    `json:"ingest"`
	MQTT          *MQTTMetrics     `json:"mqtt,omitempty"`
	Database      *DatabaseMetrics `json:"database,omitempty"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// IngestMetrics counts readings committed or rejected by the store.
type IngestMetrics struct {
	Stored uint64 `json:"stored"`
	Failed uint64 `json:"failed"`
}

// MQTTMetrics contains MQTT client and subscriber statistics.
type MQTTMetrics struct {
	Connected bool   `json:"connected"`
	Received  uint64 `json:"received"`
	Stored    uint64 `json:"stored"`
	Malformed uint64 `json:"malformed"`
	Failed    uint64 `json:"failed"`
}

// DatabaseMetrics contains database connection pool statistics.
type DatabaseMetrics struct {
	Driver          string `json:"driver"`
	OpenConnections int    `json:"open_connections"`
	InUse           int    `json:"in_use"`
	Idle            int    `json:"idle"`
	WaitCount       int64  `json:"wait_count"`
}

// handleMetrics returns runtime, stream, ingestion and pool metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	ingestStats := s.store.Stats()
	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / bytesPerMB,
			MemoryTotalMB: float64(memStats.TotalAlloc) / bytesPerMB,
			NumGC:         memStats.NumGC,
		},
		WebSocket: WSMetrics{
			ConnectedClients: s.hub.ClientCount(),
		},
		Ingest: IngestMetrics{
			Stored: ingestStats.Ingested,
			Failed: ingestStats.Failed,
		},
	}

	if s.mqtt != nil || s.subscriber != nil {
		m := &MQTTMetrics{Connected: s.mqtt.IsConnected()}
		if s.subscriber != nil {
			sub := s.subscriber.Stats()
			m.Received = sub.Received
			m.Stored = sub.Stored
			m.Malformed = sub.Malformed
			m.Failed = sub.Failed
		}
		metrics.MQTT = m
	}

	if s.db != nil {
		dbStats := s.db.Stats()
		metrics.Database = &DatabaseMetrics{
			Driver:          s.db.Dialect().Name,
			OpenConnections: dbStats.OpenConnections,
			InUse:           dbStats.InUse,
			Idle:            dbStats.Idle,
			WaitCount:       dbStats.WaitCount,
		}
	}

	writeJSON(w, http.StatusOK, metrics)
}
