// Package logging wraps log/slog with sensorcore's output settings.
//
// Every entry carries service and version attributes. Components derive their
// own logger with With, e.g. logger.With("component", "mqtt-ingest").
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Do not log database DSNs or broker and InfluxDB credentials.
package logging
