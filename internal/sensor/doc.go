// Package sensor is the data-access core for sensor readings.
//
// Sensors are discovered at runtime: the first reading for an unseen ID
// registers it in the sensor_ids table and creates its own reading table,
// sensor_<id>. Both happen in the same transaction as the reading insert.
//
// # Architecture
//
//	  HTTP API        MQTT ingest      sensor-ingest CLI
//	      │                │                   │
//	      ▼                ▼                   ▼
//	┌───────────────────────────────────────────────────┐
//	│                      Store                        │
//	│  registry.go   EnsureSensor, ListSensors, Exists  │
//	│  ingest.go     Ingest (+ listeners after commit)  │
//	│  query.go      Query (time window, newest first)  │
//	│  health.go     Health                             │
//	└───────────────────────────────────────────────────┘
//	                         │ WithConn / WithTx
//	                         ▼
//	              database.DB (sqlite3 | postgres)
//
// # Sensor IDs
//
// IDs end up inside table names, so they are checked against an allow-list
// ([A-Za-z0-9_], 1 to 50 characters) before any SQL is built. Invalid IDs
// fail with ErrInvalidSensorID on write and behave as unknown on read.
//
// # Usage
//
//	store := sensor.NewStore(db)
//	store.SetLogger(logger.With("component", "sensor_store"))
//
//	err := store.Ingest(ctx, "kitchen_01", sensor.Reading{Gas: 12.5, Fire: 0})
//
//	start, _ := sensor.ParseTimeBound("2026-03-01T00:00:00Z")
//	readings, err := store.Query(ctx, "kitchen_01", sensor.TimeRange{Start: start}, 0)
package sensor
