// Package config loads the sensorcore YAML configuration.
//
// Values are resolved in layers: built-in defaults, then the YAML file, then
// SENSORCORE_* environment variables. Validate reports every problem it finds
// in one error rather than stopping at the first.
//
// The batch CLI uses LoadOrDefault so it can run without a config file.
//
// Secrets (database DSN, MQTT password, InfluxDB token) belong in the
// environment, not in the file.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//	db, err := database.Connect(ctx, database.ConfigFromSettings(cfg.Database))
package config
