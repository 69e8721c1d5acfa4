// Package mqtt connects Sensor Core to an MQTT broker for live readings.
//
// Sensors publish JSON readings to <prefix>/<sensor_id>/readings; the
// internal/ingest package subscribes to the wildcard pattern and stores
// them. This package handles the connection itself:
//
//   - Auto-reconnect with backoff and subscription restore
//   - Retained online/offline status on <prefix>/system/status, with a
//     Last Will so a crash is reported as offline too
//   - Panic-safe message handlers
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(client.Topics().AllSensorReadings(), 1, handler)
//
// Credentials come from config or SENSORCORE_MQTT_USERNAME/PASSWORD and are
// never logged.
package mqtt
