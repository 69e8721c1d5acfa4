// Package api implements the HTTP REST API and WebSocket stream for Sensor Core.
//
// This package provides:
//   - GET /api/sensors and GET /api/sensor/{id} for the registry and readings
//   - POST /api/sensor/{id}/readings for single-reading ingestion
//   - GET /api/health and GET /api/metrics for monitoring
//   - GET /api/stream, a WebSocket hub broadcasting committed readings
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Architecture
//
// Handlers talk to the sensor store only. The hub is registered on the store
// as a listener, so readings from any ingestion path (HTTP, MQTT, batch)
// reach stream subscribers once committed.
//
// # Error Responses
//
// Every error body has the shape {"error": message, "code": code}. Store
// failures are reported as "Database error occurred"; the detail is logged
// with the request ID and never returned to the client.
//
// # Graceful Degradation
//
// MQTT and the database pool handle are optional. Without them /api/metrics
// omits the corresponding sections and everything else keeps working.
package api
