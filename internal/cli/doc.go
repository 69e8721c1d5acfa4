// Package cli implements the sensor-ingest batch command.
//
// sensor-ingest loads newline-delimited JSON readings, one record per line:
//
//	{"id": "kitchen_01", "gas": 0.42, "fire": 0, "time": "2026-03-01T12:00:00Z"}
//
// Files are read concurrently (--parallel) and share one connection pool.
// Malformed lines and readings the store rejects are skipped and counted;
// only startup connection failures and unreadable inputs fail the run.
package cli
